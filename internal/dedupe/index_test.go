package dedupe

import (
	"context"
	"errors"
	"testing"

	"github.com/senah/lecture-transcriber/internal/logger"
	"github.com/senah/lecture-transcriber/internal/metadata"
	"github.com/senah/lecture-transcriber/internal/schedule"
)

type fakeSessionLister struct {
	sessions []schedule.Session
	err      error
}

func (f *fakeSessionLister) ListSessions(context.Context) ([]schedule.Session, error) {
	return f.sessions, f.err
}

type fakeFolderLister struct {
	files map[string][]string
	err   error
}

func (f *fakeFolderLister) ListFolder(_ context.Context, folderID string) ([]string, error) {
	return f.files[folderID], f.err
}

func TestBuild_UnionOfBothSources(t *testing.T) {
	store := &fakeSessionLister{sessions: []schedule.Session{
		{ClassCode: "MBA505", Date: "2024-01-15"},
	}}
	files := &fakeFolderLister{files: map[string][]string{
		"folder-530": {"20240115093000.WAV"},
	}}
	folders := metadata.Folders{"MBA530": "folder-530"}

	idx, err := Build(context.Background(), store, files, folders, logger.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Lecture row only.
	if !idx.Handled(schedule.Session{ClassCode: "MBA505", Date: "2024-01-15"}) {
		t.Error("session with a lecture row must be handled")
	}
	// Uploaded file only: a crash between stages may have left just
	// this marker, and it is enough.
	if !idx.Handled(schedule.Session{ClassCode: "MBA530", Date: "2024-01-15"}) {
		t.Error("session with an uploaded file must be handled")
	}
	if idx.Handled(schedule.Session{ClassCode: "MBA550", Date: "2024-01-15"}) {
		t.Error("unseen session must not be handled")
	}
	if idx.Len() != 2 {
		t.Errorf("expected 2 handled sessions, got %d", idx.Len())
	}
}

func TestBuild_IgnoresForeignFilenames(t *testing.T) {
	files := &fakeFolderLister{files: map[string][]string{
		"folder-505": {"syllabus.pdf", "notes March.txt", "20240117080000.WAV"},
	}}
	folders := metadata.Folders{"MBA505": "folder-505"}

	idx, err := Build(context.Background(), &fakeSessionLister{}, files, folders, logger.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Len() != 1 {
		t.Errorf("expected only the recording to count, got %d entries", idx.Len())
	}
	if !idx.Handled(schedule.Session{ClassCode: "MBA505", Date: "2024-01-17"}) {
		t.Error("recording in the class folder must be handled")
	}
}

func TestBuild_StoreFailureIsFatal(t *testing.T) {
	store := &fakeSessionLister{err: errors.New("connection refused")}
	if _, err := Build(context.Background(), store, nil, nil, logger.NewNop()); err == nil {
		t.Fatal("expected error when the store listing fails")
	}
}

func TestBuild_FolderFailureIsFatal(t *testing.T) {
	files := &fakeFolderLister{err: errors.New("quota exceeded")}
	folders := metadata.Folders{"MBA505": "folder-505"}
	if _, err := Build(context.Background(), &fakeSessionLister{}, files, folders, logger.NewNop()); err == nil {
		t.Fatal("expected error when the folder listing fails")
	}
}

func TestBuild_NilFolderListerSkipsDrive(t *testing.T) {
	store := &fakeSessionLister{sessions: []schedule.Session{
		{ClassCode: "MBA505", Date: "2024-01-15"},
	}}
	idx, err := Build(context.Background(), store, nil, metadata.Folders{"MBA505": "x"}, logger.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Len() != 1 {
		t.Errorf("expected 1 handled session, got %d", idx.Len())
	}
}

func TestMarkHandled(t *testing.T) {
	idx, err := Build(context.Background(), &fakeSessionLister{}, nil, nil, logger.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := schedule.Session{ClassCode: "MBA505", Date: "2024-01-15"}
	if idx.Handled(s) {
		t.Fatal("fresh index must not contain the session")
	}
	idx.MarkHandled(s)
	if !idx.Handled(s) {
		t.Fatal("marked session must be handled")
	}
}
