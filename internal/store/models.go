package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Lecture is the root persisted record for one class session. Deleting a
// lecture cascades to every dependent row; that is the sanctioned way to
// force reprocessing of a recording.
type Lecture struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title           string    `gorm:"not null"`
	Professor       string    `gorm:"not null"`
	Date            string    `gorm:"type:date;not null;uniqueIndex:idx_lectures_class_date,priority:2"`
	DurationSeconds int       `gorm:"not null"`
	ClassNumber     string    `gorm:"not null;uniqueIndex:idx_lectures_class_date,priority:1"`
	Language        string    `gorm:"not null;default:en-US"`
	CreatedAt       time.Time

	Segments []TranscriptSegment `gorm:"foreignKey:LectureID;constraint:OnDelete:CASCADE"`
	Text     *LectureText        `gorm:"foreignKey:LectureID;constraint:OnDelete:CASCADE"`
	Insights *TextInsights       `gorm:"foreignKey:LectureID;constraint:OnDelete:CASCADE"`
	Speakers []Speaker           `gorm:"foreignKey:LectureID;constraint:OnDelete:CASCADE"`
}

// TranscriptSegment is one ordered timestamped piece of a lecture
// transcript. Ordering is carried by SegmentOrder, never by row order.
type TranscriptSegment struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	LectureID    uuid.UUID `gorm:"type:uuid;not null;index"`
	StartTime    float64   `gorm:"not null"`
	EndTime      float64   `gorm:"not null"`
	Text         string    `gorm:"not null"`
	SpeakerName  *string
	SegmentOrder int `gorm:"not null"`
}

// LectureText is the single full-text blob per lecture.
type LectureText struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	LectureID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Text      string    `gorm:"not null"`
}

// TextInsights is the single generated study-material row per lecture.
// Absence of the row means insights were never generated, which is
// distinct from a present row with empty fields.
type TextInsights struct {
	ID              uint                        `gorm:"primaryKey;autoIncrement"`
	LectureID       uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex"`
	Summary         string                      `gorm:"not null"`
	KeyTerms        datatypes.JSONSlice[string] `gorm:"not null"`
	MainIdeas       datatypes.JSONSlice[string] `gorm:"not null"`
	ReviewQuestions datatypes.JSONSlice[string] `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Speaker is reserved for diarization. No current logic writes it.
type Speaker struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	LectureID    uuid.UUID `gorm:"type:uuid;not null;index"`
	SpeakerName  string    `gorm:"not null"`
	SpeakerOrder int       `gorm:"not null"`
}
