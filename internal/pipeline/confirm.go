package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/senah/lecture-transcriber/internal/schedule"
	"github.com/senah/lecture-transcriber/internal/types"
)

// AutoConfirmer accepts every file with its proposed title. Used when the
// run is started with confirmations suppressed.
type AutoConfirmer struct{}

func (AutoConfirmer) Confirm(types.RecordingFile, schedule.Session, string) (Decision, error) {
	return Decision{}, nil
}

// PromptConfirmer asks on the terminal before each file: accept, skip, or
// accept with a different title.
type PromptConfirmer struct {
	In  io.Reader
	Out io.Writer
}

func (p *PromptConfirmer) Confirm(rec types.RecordingFile, session schedule.Session, title string) (Decision, error) {
	fmt.Fprintf(p.Out, "\n%s -> %s\n  title: %s\n  [y]es / [s]kip / [r]ename: ", rec.Name, session, title)

	reader := bufio.NewReader(p.In)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return Decision{}, fmt.Errorf("failed to read confirmation: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "s", "skip", "n", "no":
		return Decision{Skip: true}, nil
	case "r", "rename":
		fmt.Fprint(p.Out, "  new title: ")
		newTitle, err := reader.ReadString('\n')
		if err != nil {
			return Decision{}, fmt.Errorf("failed to read title: %w", err)
		}
		return Decision{Title: strings.TrimSpace(newTitle)}, nil
	default:
		return Decision{}, nil
	}
}
