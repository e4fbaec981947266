package scan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/senah/lecture-transcriber/internal/logger"
)

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("RIFFdata"), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func newTestScanner(t *testing.T, dir string) *Scanner {
	t.Helper()
	s := New(dir, []string{".wav"}, logger.NewNop())
	s.probe = func(string) (time.Duration, error) { return 90 * time.Minute, nil }
	return s
}

func TestScan_ExactFormatOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20240115080000.WAV")
	writeFile(t, dir, "20240117093000.wav")
	writeFile(t, dir, "notes.txt")          // wrong shape and extension
	writeFile(t, dir, "recording.wav")      // wrong shape
	writeFile(t, dir, "20240115080000.mp3") // right shape, wrong extension

	candidates, err := newTestScanner(t, dir).Scan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	for _, c := range candidates {
		if c.ParseErr != nil {
			t.Errorf("unexpected parse error for %s: %v", c.File.Name, c.ParseErr)
		}
		if c.File.Duration != 90*time.Minute {
			t.Errorf("expected probed duration for %s, got %v", c.File.Name, c.File.Duration)
		}
	}
}

func TestScan_InvalidTimestampReported(t *testing.T) {
	dir := t.TempDir()
	// Recorder-shaped but month 13: must surface as a parse failure,
	// not vanish from the run.
	writeFile(t, dir, "20241315083000.WAV")

	candidates, err := newTestScanner(t, dir).Scan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].ParseErr == nil {
		t.Fatal("expected a parse error")
	}
}

func TestScan_ParsesStartAndSize(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20240115083000.WAV")

	candidates, err := newTestScanner(t, dir).Scan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}

	f := candidates[0].File
	want := time.Date(2024, 1, 15, 8, 30, 0, 0, time.Local)
	if !f.Start.Equal(want) {
		t.Errorf("expected start %v, got %v", want, f.Start)
	}
	if f.SizeBytes == 0 {
		t.Error("expected non-zero size")
	}
}

func TestScan_MissingDirectory(t *testing.T) {
	if _, err := newTestScanner(t, filepath.Join(t.TempDir(), "nope")).Scan(); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
