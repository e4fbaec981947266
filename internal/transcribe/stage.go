// Package transcribe runs the transcription engine and persists the
// resulting lecture, segments, and full text.
package transcribe

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/senah/lecture-transcriber/internal/logger"
	"github.com/senah/lecture-transcriber/internal/schedule"
	"github.com/senah/lecture-transcriber/internal/store"
	"github.com/senah/lecture-transcriber/internal/types"
)

// TranscriptionError means the engine itself failed; nothing was
// persisted and a rerun repeats the full engine call.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed: %v", e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// PersistenceError means the engine succeeded but a store write failed.
// Kept distinct from TranscriptionError because the costly engine work is
// already done: the operator should delete the orphaned lecture row (if
// any) and rerun, not assume the engine is broken.
type PersistenceError struct {
	// LectureID is the committed lecture row left behind, if the failure
	// happened after the root insert. uuid.Nil when nothing committed.
	LectureID uuid.UUID
	Err       error
}

func (e *PersistenceError) Error() string {
	if e.LectureID != uuid.Nil {
		return fmt.Sprintf("persistence failed after transcription (orphan lecture %s): %v", e.LectureID, e.Err)
	}
	return fmt.Sprintf("persistence failed after transcription: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Engine is the speech-to-text black box.
type Engine interface {
	Transcribe(ctx context.Context, audioPath string) (*types.TranscriptionResult, error)
}

// Metadata is what the stage needs to build the lecture row.
type Metadata struct {
	Session   schedule.Session
	Title     string
	Professor string
}

// Outcome is the committed result of a transcription run.
type Outcome struct {
	LectureID uuid.UUID
	FullText  string
	Segments  int
}

// Stage wraps the engine call and the ordered persistence of its output.
type Stage struct {
	engine Engine
	repo   store.LectureRepo
	log    *logger.Logger
}

func NewStage(engine Engine, repo store.LectureRepo, log *logger.Logger) *Stage {
	return &Stage{
		engine: engine,
		repo:   repo,
		log:    log.With("stage", "transcribe"),
	}
}

// Run transcribes a recording and persists the lecture row first, then
// the segment rows, then the full-text row. The write order preserves
// referential integrity: dependent rows never exist without their
// lecture. If a dependent write fails the lecture row is left in place;
// the recovery path is cascade delete plus rerun.
func (s *Stage) Run(ctx context.Context, rec types.RecordingFile, meta Metadata) (*Outcome, error) {
	result, err := s.engine.Transcribe(ctx, rec.Path)
	if err != nil {
		return nil, &TranscriptionError{Err: err}
	}

	segments := FilterSegments(result.Segments)
	fullText := joinSegments(segments)

	language := result.Language
	if language == "" {
		language = "en-US"
	}

	lecture := &store.Lecture{
		ID:              uuid.New(),
		Title:           meta.Title,
		Professor:       meta.Professor,
		Date:            meta.Session.Date,
		DurationSeconds: int(rec.Duration.Seconds()),
		ClassNumber:     meta.Session.ClassCode,
		Language:        language,
	}

	if err := s.repo.CreateLecture(ctx, lecture); err != nil {
		return nil, &PersistenceError{Err: err}
	}

	rows := make([]store.TranscriptSegment, len(segments))
	for i, seg := range segments {
		rows[i] = store.TranscriptSegment{
			LectureID:    lecture.ID,
			StartTime:    seg.Start,
			EndTime:      seg.End,
			Text:         seg.Text,
			SegmentOrder: i + 1,
		}
	}
	if err := s.repo.CreateSegments(ctx, rows); err != nil {
		return nil, &PersistenceError{LectureID: lecture.ID, Err: err}
	}

	if err := s.repo.CreateText(ctx, &store.LectureText{LectureID: lecture.ID, Text: fullText}); err != nil {
		return nil, &PersistenceError{LectureID: lecture.ID, Err: err}
	}

	s.log.Info("lecture persisted",
		"lecture", lecture.ID,
		"class", lecture.ClassNumber,
		"date", lecture.Date,
		"segments", len(rows))

	return &Outcome{
		LectureID: lecture.ID,
		FullText:  fullText,
		Segments:  len(rows),
	}, nil
}

// FilterSegments drops segments that carry no usable content: empty text
// or a non-positive time span. Dropped segments are never persisted and
// never counted as errors. Relative order of the survivors is preserved.
func FilterSegments(segments []types.Segment) []types.Segment {
	kept := make([]types.Segment, 0, len(segments))
	for _, seg := range segments {
		if seg.End <= seg.Start {
			continue
		}
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		kept = append(kept, seg)
	}
	return kept
}

func joinSegments(segments []types.Segment) string {
	parts := make([]string, len(segments))
	for i, seg := range segments {
		parts[i] = strings.TrimSpace(seg.Text)
	}
	return strings.Join(parts, " ")
}
