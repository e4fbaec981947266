// Package pipeline drives the per-file workflow: resolve, dedup check,
// confirm, upload, transcribe, generate insights.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/senah/lecture-transcriber/internal/dedupe"
	"github.com/senah/lecture-transcriber/internal/insights"
	"github.com/senah/lecture-transcriber/internal/logger"
	"github.com/senah/lecture-transcriber/internal/metadata"
	"github.com/senah/lecture-transcriber/internal/scan"
	"github.com/senah/lecture-transcriber/internal/schedule"
	"github.com/senah/lecture-transcriber/internal/transcribe"
	"github.com/senah/lecture-transcriber/internal/types"
)

// State is the terminal state of one file after a run.
type State string

const (
	StateSkipped     State = "SKIPPED"
	StateTranscribed State = "TRANSCRIBED"
	StateInsighted   State = "INSIGHTED"
	StateFailed      State = "FAILED"
)

// SkipReason explains a Skipped terminal state.
type SkipReason string

const (
	SkipUnparsable     SkipReason = "unparsable"
	SkipUnscheduled    SkipReason = "unscheduled"
	SkipAlreadyHandled SkipReason = "already-handled"
	SkipUser           SkipReason = "user-skip"
)

// Stage names used in failure reporting.
const (
	StageMetadata   = "metadata"
	StageUpload     = "upload"
	StageTranscribe = "transcribe"
	StagePersist    = "persist"
	StageInsights   = "insights"
)

// UploadError wraps an upload failure. Upload is best-effort bookkeeping:
// it is logged and the file's pipeline continues, because losing the
// cloud backup must not block getting a transcript.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed: %v", e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// Result is the outcome of one file.
type Result struct {
	File       types.RecordingFile
	Session    *schedule.Session
	State      State
	SkipReason SkipReason
	FailStage  string
	Err        error
	UploadErr  error
	LectureID  uuid.UUID
}

// Decision is a confirmation outcome for one file.
type Decision struct {
	Skip bool
	// Title overrides the generated or configured title when non-empty.
	Title string
}

// Confirmer is the interactive confirm/skip/rename gate. The auto
// implementation accepts everything.
type Confirmer interface {
	Confirm(rec types.RecordingFile, session schedule.Session, title string) (Decision, error)
}

// Uploader pushes a recording to the file-hosting service.
type Uploader interface {
	UploadRecording(ctx context.Context, folderID, path string) (string, error)
}

// Transcriber is the transcription stage.
type Transcriber interface {
	Run(ctx context.Context, rec types.RecordingFile, meta transcribe.Metadata) (*transcribe.Outcome, error)
}

// Insighter is the insight generation stage.
type Insighter interface {
	Run(ctx context.Context, lectureID uuid.UUID, transcript string, meta insights.Context) error
}

// MetadataLoader resolves class metadata.
type MetadataLoader interface {
	Load(classCode string) (metadata.ClassMetadata, error)
}

const uploadAttempts = 3

// Pipeline sequences the stages for each discovered file. Strictly
// sequential: one file at a time, one stage at a time.
type Pipeline struct {
	sched       *schedule.Schedule
	meta        MetadataLoader
	index       *dedupe.Index
	folders     metadata.Folders
	uploader    Uploader // nil when Drive is not configured
	transcriber Transcriber
	insighter   Insighter
	confirmer   Confirmer
	sleep       func(time.Duration)
	log         *logger.Logger
}

func New(
	sched *schedule.Schedule,
	meta MetadataLoader,
	index *dedupe.Index,
	folders metadata.Folders,
	uploader Uploader,
	transcriber Transcriber,
	insighter Insighter,
	confirmer Confirmer,
	log *logger.Logger,
) *Pipeline {
	return &Pipeline{
		sched:       sched,
		meta:        meta,
		index:       index,
		folders:     folders,
		uploader:    uploader,
		transcriber: transcriber,
		insighter:   insighter,
		confirmer:   confirmer,
		sleep:       time.Sleep,
		log:         log.With("component", "pipeline"),
	}
}

// Run processes every candidate in order and returns the run summary.
// Per-file failures are recorded and never abort the run.
func (p *Pipeline) Run(ctx context.Context, candidates []scan.Candidate) *Summary {
	summary := NewSummary()
	for _, c := range candidates {
		result := p.processFile(ctx, c)
		summary.Add(result)
	}
	return summary
}

func (p *Pipeline) processFile(ctx context.Context, c scan.Candidate) Result {
	rec := c.File
	log := p.log.With("file", rec.Name)

	if c.ParseErr != nil {
		log.Warn("skipping: unparsable filename", "error", c.ParseErr)
		return Result{File: rec, State: StateSkipped, SkipReason: SkipUnparsable, Err: c.ParseErr}
	}

	session, err := p.sched.Resolve(rec.Start, rec.Duration)
	if err != nil {
		if errors.Is(err, schedule.ErrUnscheduled) {
			log.Warn("skipping: no scheduled class matches", "start", rec.Start)
			return Result{File: rec, State: StateSkipped, SkipReason: SkipUnscheduled, Err: err}
		}
		return Result{File: rec, State: StateSkipped, SkipReason: SkipUnparsable, Err: err}
	}
	log = log.With("session", session.String())

	if p.index.Handled(session) {
		log.Info("skipping: session already handled")
		return Result{File: rec, Session: &session, State: StateSkipped, SkipReason: SkipAlreadyHandled}
	}

	classMeta, err := p.meta.Load(session.ClassCode)
	if err != nil {
		// Professor attribution is never guessed; the file is skipped
		// with a hard error, not defaulted.
		log.Error("metadata lookup failed", "error", err)
		return Result{File: rec, Session: &session, State: StateFailed, FailStage: StageMetadata, Err: err}
	}
	title := classMeta.TitleFor(session.ClassCode, session.Date)

	decision, err := p.confirmer.Confirm(rec, session, title)
	if err != nil {
		log.Error("confirmation failed", "error", err)
		return Result{File: rec, Session: &session, State: StateFailed, FailStage: StageMetadata, Err: err}
	}
	if decision.Skip {
		log.Info("skipping: declined by user")
		return Result{File: rec, Session: &session, State: StateSkipped, SkipReason: SkipUser}
	}
	if decision.Title != "" {
		title = decision.Title
	}

	result := Result{File: rec, Session: &session}

	// Upload first so a copy of the audio exists before the expensive
	// work, but never let its failure block transcription.
	if err := p.upload(ctx, session, rec); err != nil {
		log.Warn("upload failed, continuing with transcription", "error", err)
		result.UploadErr = &UploadError{Err: err}
	}

	outcome, err := p.transcriber.Run(ctx, rec, transcribe.Metadata{
		Session:   session,
		Title:     title,
		Professor: classMeta.Professor,
	})
	if err != nil {
		stage := StageTranscribe
		var perr *transcribe.PersistenceError
		if errors.As(err, &perr) {
			stage = StagePersist
			if perr.LectureID != uuid.Nil {
				// The lecture row committed, so the session is handled;
				// recovery is cascade delete plus rerun.
				result.LectureID = perr.LectureID
				p.index.MarkHandled(session)
			}
		}
		log.Error("transcription stage failed", "stage", stage, "error", err)
		result.State = StateFailed
		result.FailStage = stage
		result.Err = err
		return result
	}
	result.LectureID = outcome.LectureID
	p.index.MarkHandled(session)

	if err := p.insighter.Run(ctx, outcome.LectureID, outcome.FullText, insights.Context{
		ClassCode: session.ClassCode,
		Title:     title,
		Professor: classMeta.Professor,
	}); err != nil {
		log.Error("insight stage failed", "lecture", outcome.LectureID, "error", err)
		result.State = StateTranscribed
		result.FailStage = StageInsights
		result.Err = err
		return result
	}

	log.Info("file fully processed", "lecture", outcome.LectureID)
	result.State = StateInsighted
	return result
}

// upload pushes the recording into its class folder with retries.
func (p *Pipeline) upload(ctx context.Context, session schedule.Session, rec types.RecordingFile) error {
	if p.uploader == nil {
		return fmt.Errorf("file hosting not configured")
	}
	folderID, ok := p.folders[session.ClassCode]
	if !ok {
		return fmt.Errorf("no folder mapping for class %s", session.ClassCode)
	}

	var err error
	for attempt := 1; attempt <= uploadAttempts; attempt++ {
		var url string
		url, err = p.uploader.UploadRecording(ctx, folderID, rec.Path)
		if err == nil {
			p.log.Info("recording uploaded", "file", rec.Name, "url", url)
			return nil
		}
		p.log.Warn("upload attempt failed", "attempt", attempt, "error", err)
		if attempt < uploadAttempts {
			p.sleep(time.Duration(attempt*attempt) * time.Second)
		}
	}
	return err
}
