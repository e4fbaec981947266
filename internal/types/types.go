package types

import "time"

// RecordingFile is a discovered local recording. Constructed fresh on every
// run from the filesystem scan; never persisted.
type RecordingFile struct {
	Path      string
	Name      string
	Start     time.Time
	SizeBytes int64
	Duration  time.Duration
}

// Segment is a timestamped piece of transcription.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// TranscriptionResult is the output of the transcription engine.
type TranscriptionResult struct {
	Text     string
	Language string
	Segments []Segment
}
