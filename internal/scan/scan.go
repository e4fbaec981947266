// Package scan discovers recordings in the local recorder directory.
package scan

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/senah/lecture-transcriber/internal/logger"
	"github.com/senah/lecture-transcriber/internal/schedule"
	"github.com/senah/lecture-transcriber/internal/types"
)

// Candidate is one directory entry that looked like a recording. ParseErr
// is set when the name has the recorder's shape but does not encode a
// valid timestamp; such files are reported as skipped, not dropped.
type Candidate struct {
	File     types.RecordingFile
	ParseErr error
}

// Scanner lists recording files from a directory.
type Scanner struct {
	dir        string
	extensions map[string]bool
	probe      func(path string) (time.Duration, error)
	log        *logger.Logger
}

// New creates a scanner for dir accepting the given audio extensions
// (lowercase, with dot, e.g. ".wav").
func New(dir string, extensions []string, log *logger.Logger) *Scanner {
	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		exts[strings.ToLower(e)] = true
	}
	return &Scanner{
		dir:        dir,
		extensions: exts,
		probe:      ProbeDuration,
		log:        log.With("component", "scanner"),
	}
}

// Scan returns the recordings found in the directory. Files whose names do
// not have the fourteen-digit recorder shape, or whose extension is not an
// accepted audio format, are ignored entirely.
func (s *Scanner) Scan() ([]Candidate, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read recording directory %s: %w", s.dir, err)
	}

	var candidates []Candidate
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !s.extensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		if !schedule.LooksLikeRecording(name) {
			continue
		}

		path := filepath.Join(s.dir, name)
		info, err := entry.Info()
		if err != nil {
			s.log.Warn("cannot stat recording, skipping", "file", name, "error", err)
			continue
		}

		start, err := schedule.ParseRecordingTimestamp(name)
		if err != nil {
			candidates = append(candidates, Candidate{
				File:     types.RecordingFile{Path: path, Name: name, SizeBytes: info.Size()},
				ParseErr: err,
			})
			continue
		}

		duration, err := s.probe(path)
		if err != nil {
			s.log.Warn("cannot probe recording duration", "file", name, "error", err)
			duration = 0
		}

		candidates = append(candidates, Candidate{
			File: types.RecordingFile{
				Path:      path,
				Name:      name,
				Start:     start,
				SizeBytes: info.Size(),
				Duration:  duration,
			},
		})
	}

	s.log.Info("recording scan complete", "dir", s.dir, "found", len(candidates))
	return candidates, nil
}

// ProbeDuration reads the audio duration with ffprobe.
func ProbeDuration(path string) (time.Duration, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %v\nOutput: %s", err, string(output))
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output %q: %v", string(output), err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
