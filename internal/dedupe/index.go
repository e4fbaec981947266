// Package dedupe builds the per-run index of sessions that are already
// handled, merged from the lecture store and the Drive folder listings.
package dedupe

import (
	"context"
	"fmt"

	"github.com/senah/lecture-transcriber/internal/logger"
	"github.com/senah/lecture-transcriber/internal/metadata"
	"github.com/senah/lecture-transcriber/internal/schedule"
)

// SessionLister yields the sessions of all persisted lectures.
type SessionLister interface {
	ListSessions(ctx context.Context) ([]schedule.Session, error)
}

// FolderLister yields the filenames present in a Drive folder.
type FolderLister interface {
	ListFolder(ctx context.Context, folderID string) ([]string, error)
}

// Index is the set of sessions considered already handled. Built once per
// run, read many times, never persisted.
type Index struct {
	handled map[string]struct{}
}

// Build queries both remote sources and unions their session sets. Either
// marker alone — an existing lecture row or an uploaded file — means the
// session is handled: a crash between stages may have left only one of
// them behind, and either is enough to forbid duplicate work. A failure
// in either source is fatal, because a partial index would cause
// re-uploads or duplicate lecture rows.
func Build(ctx context.Context, store SessionLister, files FolderLister, folders metadata.Folders, log *logger.Logger) (*Index, error) {
	idx := &Index{handled: make(map[string]struct{})}

	sessions, err := store.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list persisted lectures: %w", err)
	}
	for _, s := range sessions {
		idx.handled[s.Key()] = struct{}{}
	}
	fromStore := len(idx.handled)

	if files != nil {
		for classCode, folderID := range folders {
			names, err := files.ListFolder(ctx, folderID)
			if err != nil {
				return nil, fmt.Errorf("failed to list Drive folder for %s: %w", classCode, err)
			}
			for _, name := range names {
				start, err := schedule.ParseRecordingTimestamp(name)
				if err != nil {
					// Foreign files in the class folder are not markers.
					continue
				}
				s := schedule.Session{ClassCode: classCode, Date: start.Format("2006-01-02")}
				idx.handled[s.Key()] = struct{}{}
			}
		}
	}

	log.Info("remote state index built",
		"lectures", fromStore,
		"total", len(idx.handled))
	return idx, nil
}

// Handled reports whether a session was already processed.
func (i *Index) Handled(s schedule.Session) bool {
	_, ok := i.handled[s.Key()]
	return ok
}

// MarkHandled records a session as handled for the rest of this run. Only
// a committed lecture row justifies the mark; upload alone does not.
func (i *Index) MarkHandled(s schedule.Session) {
	i.handled[s.Key()] = struct{}{}
}

// Len returns the number of handled sessions.
func (i *Index) Len() int {
	return len(i.handled)
}
