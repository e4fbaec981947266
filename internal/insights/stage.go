package insights

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/senah/lecture-transcriber/internal/logger"
	"github.com/senah/lecture-transcriber/internal/store"
)

// InsightError means no insights row could be written for the lecture,
// even after retries and the degraded fallback. The lecture and its
// transcript remain valid and usable.
type InsightError struct {
	LectureID uuid.UUID
	Err       error
}

func (e *InsightError) Error() string {
	return fmt.Sprintf("insight generation failed for lecture %s: %v", e.LectureID, e.Err)
}

func (e *InsightError) Unwrap() error { return e.Err }

// InsightsWriter is the slice of the store the stage needs.
type InsightsWriter interface {
	UpsertInsights(ctx context.Context, insights *store.TextInsights) error
	HasInsights(ctx context.Context, lectureID uuid.UUID) (bool, error)
}

const (
	maxMainIdeas  = 8
	maxKeyTerms   = 15
	maxQuestions  = 12
	summaryMaxChars = 15000 // characters of transcript fed to the summary prompt
)

// Stage wraps the generative engine and the single insights row per
// lecture.
type Stage struct {
	engine     Engine
	repo       InsightsWriter
	maxChunk   int
	maxRetries int
	retryDelay time.Duration
	sleep      func(time.Duration)
	log        *logger.Logger
}

// NewStage creates the insight stage. maxChunk is the transcript length
// threshold above which chunking kicks in.
func NewStage(engine Engine, repo InsightsWriter, maxChunk int, log *logger.Logger) *Stage {
	if maxChunk <= 0 {
		maxChunk = 30000
	}
	return &Stage{
		engine:     engine,
		repo:       repo,
		maxChunk:   maxChunk,
		maxRetries: 3,
		retryDelay: 2 * time.Second,
		sleep:      time.Sleep,
		log:        log.With("stage", "insights"),
	}
}

// Run generates insights for a transcript and upserts the single
// TextInsights row for the lecture. Individual generation failures
// degrade to fallback content rather than failing the stage; only a
// store failure surfaces as InsightError. Rerunning for a lecture that
// already has insights replaces them, never duplicates.
func (s *Stage) Run(ctx context.Context, lectureID uuid.UUID, transcript string, meta Context) error {
	chunks := chunkText(transcript, s.maxChunk)
	s.log.Info("generating insights",
		"lecture", lectureID,
		"chars", len(transcript),
		"chunks", len(chunks))

	if exists, err := s.repo.HasInsights(ctx, lectureID); err == nil && exists {
		s.log.Info("replacing existing insights", "lecture", lectureID)
	}

	mainIdeas := s.generateMainIdeas(ctx, chunks, meta)
	summary := s.generateSummary(ctx, chunks, meta)
	keyTerms := s.generateKeyTerms(ctx, chunks, meta)
	questions := s.generateQuestions(ctx, chunks, meta, mainIdeas)

	row := &store.TextInsights{
		LectureID:       lectureID,
		Summary:         summary,
		KeyTerms:        datatypes.NewJSONSlice(keyTerms),
		MainIdeas:       datatypes.NewJSONSlice(mainIdeas),
		ReviewQuestions: datatypes.NewJSONSlice(questions),
	}
	if err := s.repo.UpsertInsights(ctx, row); err != nil {
		return &InsightError{LectureID: lectureID, Err: err}
	}

	s.log.Info("insights persisted",
		"lecture", lectureID,
		"main_ideas", len(mainIdeas),
		"key_terms", len(keyTerms),
		"questions", len(questions))
	return nil
}

// generate submits a prompt with bounded retries and exponential backoff.
func (s *Stage) generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		response, err := s.engine.GenerateText(ctx, prompt)
		if err == nil {
			return response, nil
		}
		lastErr = err
		s.log.Warn("engine request failed", "attempt", attempt, "error", err)
		if attempt < s.maxRetries {
			s.sleep(s.retryDelay * time.Duration(attempt))
		}
	}
	return "", fmt.Errorf("engine failed after %d attempts: %w", s.maxRetries, lastErr)
}

// generateMainIdeas asks per chunk and merges, dropping the duplicates
// that chunk-boundary overlap produces.
func (s *Stage) generateMainIdeas(ctx context.Context, chunks []string, meta Context) []string {
	var ideas []string
	for _, chunk := range chunks {
		response, err := s.generate(ctx, mainIdeasPrompt(chunk, meta))
		if err != nil {
			s.log.Warn("main ideas generation degraded", "error", err)
			continue
		}
		ideas = append(ideas, parseList(response)...)
	}
	ideas = dedupeStrings(ideas)
	if len(ideas) == 0 {
		// Degraded fallback: present but minimal, so the row still exists.
		ideas = []string{fmt.Sprintf("Review the %s lecture on %s", meta.ClassCode, meta.Title)}
	}
	if len(ideas) > maxMainIdeas {
		ideas = ideas[:maxMainIdeas]
	}
	return ideas
}

func (s *Stage) generateSummary(ctx context.Context, chunks []string, meta Context) string {
	// First and last chunks bracket the lecture; the summary prompt does
	// not need the full middle.
	text := chunks[0]
	if len(chunks) > 1 {
		text += "\n\n" + chunks[len(chunks)-1]
	}
	if len(text) > summaryMaxChars {
		text = text[:summaryMaxChars]
	}

	response, err := s.generate(ctx, summaryPrompt(text, meta))
	if err != nil {
		s.log.Warn("summary generation degraded", "error", err)
		return fmt.Sprintf("Summary unavailable for the %s lecture %q; transcript was saved and insight generation can be retried.",
			meta.ClassCode, meta.Title)
	}
	return response
}

func (s *Stage) generateKeyTerms(ctx context.Context, chunks []string, meta Context) []string {
	var terms []string
	for _, chunk := range chunks {
		response, err := s.generate(ctx, keyTermsPrompt(chunk, meta))
		if err != nil {
			s.log.Warn("key terms generation degraded", "error", err)
			continue
		}
		terms = append(terms, parseKeywords(response)...)
	}
	terms = dedupeStrings(terms)
	if len(terms) > maxKeyTerms {
		terms = terms[:maxKeyTerms]
	}
	return terms
}

func (s *Stage) generateQuestions(ctx context.Context, chunks []string, meta Context, mainIdeas []string) []string {
	// Sample the lecture rather than resubmitting all of it.
	sample := chunks[0]
	if len(chunks) > 1 {
		last := chunks[len(chunks)-1]
		if len(sample) > 4000 {
			sample = sample[:4000]
		}
		if len(last) > 4000 {
			last = last[:4000]
		}
		sample = sample + "\n...\n" + last
	}

	response, err := s.generate(ctx, questionsPrompt(sample, meta, mainIdeas))
	if err != nil {
		s.log.Warn("question generation degraded", "error", err)
		return []string{
			fmt.Sprintf("What are the key takeaways from the %s lecture %q?", meta.ClassCode, meta.Title),
			"How do the concepts discussed apply to real-world scenarios?",
		}
	}
	questions := dedupeStrings(parseList(response))
	if len(questions) > maxQuestions {
		questions = questions[:maxQuestions]
	}
	return questions
}
