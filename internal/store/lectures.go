package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/senah/lecture-transcriber/internal/logger"
	"github.com/senah/lecture-transcriber/internal/schedule"
)

// LectureRepo defines persistence operations for lectures and their
// dependent rows.
type LectureRepo interface {
	// CreateLecture inserts the lecture row. It must be committed before
	// any dependent row is written.
	CreateLecture(ctx context.Context, lecture *Lecture) error

	// CreateSegments inserts transcript segments in batches.
	CreateSegments(ctx context.Context, segments []TranscriptSegment) error

	// CreateText inserts the full-text row for a lecture.
	CreateText(ctx context.Context, text *LectureText) error

	// UpsertInsights writes the single insights row for a lecture,
	// replacing any existing one.
	UpsertInsights(ctx context.Context, insights *TextInsights) error

	// HasInsights reports whether an insights row exists for a lecture.
	HasInsights(ctx context.Context, lectureID uuid.UUID) (bool, error)

	// ListSessions returns the (class, date) identity of every persisted
	// lecture.
	ListSessions(ctx context.Context) ([]schedule.Session, error)

	// DeleteLecture removes a lecture and, by cascade, everything it owns.
	DeleteLecture(ctx context.Context, id uuid.UUID) error
}

const segmentBatchSize = 500

type lectureRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewLectureRepo creates a gorm-backed lecture repository.
func NewLectureRepo(db *gorm.DB, baseLog *logger.Logger) LectureRepo {
	return &lectureRepo{
		db:  db,
		log: baseLog.With("repo", "LectureRepo"),
	}
}

func (r *lectureRepo) CreateLecture(ctx context.Context, lecture *Lecture) error {
	if lecture.ID == uuid.Nil {
		lecture.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(lecture).Error
}

func (r *lectureRepo) CreateSegments(ctx context.Context, segments []TranscriptSegment) error {
	if len(segments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(segments, segmentBatchSize).Error
}

func (r *lectureRepo) CreateText(ctx context.Context, text *LectureText) error {
	return r.db.WithContext(ctx).Create(text).Error
}

func (r *lectureRepo) UpsertInsights(ctx context.Context, insights *TextInsights) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "lecture_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"summary",
				"key_terms",
				"main_ideas",
				"review_questions",
				"updated_at",
			}),
		}).
		Create(insights).Error
}

func (r *lectureRepo) HasInsights(ctx context.Context, lectureID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&TextInsights{}).
		Where("lecture_id = ?", lectureID).
		Count(&count).Error
	return count > 0, err
}

func (r *lectureRepo) ListSessions(ctx context.Context) ([]schedule.Session, error) {
	var rows []struct {
		ClassNumber string
		Date        string
	}
	if err := r.db.WithContext(ctx).
		Model(&Lecture{}).
		Select("class_number, date").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	sessions := make([]schedule.Session, 0, len(rows))
	for _, row := range rows {
		date := row.Date
		if len(date) > 10 {
			// Some drivers scan date columns as full timestamps.
			date = date[:10]
		}
		sessions = append(sessions, schedule.Session{ClassCode: row.ClassNumber, Date: date})
	}
	return sessions, nil
}

func (r *lectureRepo) DeleteLecture(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Select(clause.Associations).
		Delete(&Lecture{ID: id}).Error
}
