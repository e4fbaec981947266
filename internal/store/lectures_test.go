package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/senah/lecture-transcriber/internal/logger"
)

func testRepo(t *testing.T) (LectureRepo, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("enabling foreign keys: %v", err)
	}
	if err := db.AutoMigrate(&Lecture{}, &TranscriptSegment{}, &LectureText{}, &TextInsights{}, &Speaker{}); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return NewLectureRepo(db, logger.NewNop()), db
}

func testLecture() *Lecture {
	return &Lecture{
		ID:              uuid.New(),
		Title:           "MBA505 Lecture 2024-01-15",
		Professor:       "Dr. X",
		Date:            "2024-01-15",
		DurationSeconds: 4500,
		ClassNumber:     "MBA505",
		Language:        "en",
	}
}

func TestCreateLecture_SessionUniqueness(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()

	if err := repo.CreateLecture(ctx, testLecture()); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	// Same class and date, different id: the unique index must reject it.
	dup := testLecture()
	if err := repo.CreateLecture(ctx, dup); err == nil {
		t.Error("expected the duplicate session to be rejected")
	}

	other := testLecture()
	other.Date = "2024-01-17"
	if err := repo.CreateLecture(ctx, other); err != nil {
		t.Errorf("different date must be accepted: %v", err)
	}
}

func TestCreateLecture_AssignsID(t *testing.T) {
	repo, _ := testRepo(t)

	lecture := testLecture()
	lecture.ID = uuid.Nil
	if err := repo.CreateLecture(context.Background(), lecture); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if lecture.ID == uuid.Nil {
		t.Error("expected an id to be assigned")
	}
}

func TestCreateSegments_PreservesOrder(t *testing.T) {
	repo, db := testRepo(t)
	ctx := context.Background()

	lecture := testLecture()
	if err := repo.CreateLecture(ctx, lecture); err != nil {
		t.Fatalf("insert lecture: %v", err)
	}

	segments := []TranscriptSegment{
		{LectureID: lecture.ID, StartTime: 0, EndTime: 5, Text: "first", SegmentOrder: 1},
		{LectureID: lecture.ID, StartTime: 5, EndTime: 9, Text: "second", SegmentOrder: 2},
		{LectureID: lecture.ID, StartTime: 9, EndTime: 14, Text: "third", SegmentOrder: 3},
	}
	if err := repo.CreateSegments(ctx, segments); err != nil {
		t.Fatalf("insert segments: %v", err)
	}

	var got []TranscriptSegment
	if err := db.Where("lecture_id = ?", lecture.ID).Order("segment_order").Find(&got).Error; err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(got))
	}
	for i, seg := range got {
		if seg.SegmentOrder != i+1 {
			t.Errorf("segment %d has order %d", i, seg.SegmentOrder)
		}
	}
}

func TestCreateSegments_EmptySliceIsNoop(t *testing.T) {
	repo, _ := testRepo(t)
	if err := repo.CreateSegments(context.Background(), nil); err != nil {
		t.Errorf("empty insert must succeed: %v", err)
	}
}

func TestCreateText_OnePerLecture(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()

	lecture := testLecture()
	if err := repo.CreateLecture(ctx, lecture); err != nil {
		t.Fatalf("insert lecture: %v", err)
	}
	if err := repo.CreateText(ctx, &LectureText{LectureID: lecture.ID, Text: "full text"}); err != nil {
		t.Fatalf("insert text: %v", err)
	}
	if err := repo.CreateText(ctx, &LectureText{LectureID: lecture.ID, Text: "again"}); err == nil {
		t.Error("expected the second text row to be rejected")
	}
}

func TestUpsertInsights_ReplacesNotDuplicates(t *testing.T) {
	repo, db := testRepo(t)
	ctx := context.Background()

	lecture := testLecture()
	if err := repo.CreateLecture(ctx, lecture); err != nil {
		t.Fatalf("insert lecture: %v", err)
	}

	first := &TextInsights{
		LectureID: lecture.ID,
		Summary:   "first pass",
		KeyTerms:  datatypes.NewJSONSlice([]string{"logistics"}),
		MainIdeas: datatypes.NewJSONSlice([]string{"idea one"}),
	}
	if err := repo.UpsertInsights(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := &TextInsights{
		LectureID:       lecture.ID,
		Summary:         "second pass",
		KeyTerms:        datatypes.NewJSONSlice([]string{"logistics", "inventory"}),
		MainIdeas:       datatypes.NewJSONSlice([]string{"idea one", "idea two"}),
		ReviewQuestions: datatypes.NewJSONSlice([]string{"why?"}),
	}
	if err := repo.UpsertInsights(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var count int64
	if err := db.Model(&TextInsights{}).Where("lecture_id = ?", lecture.ID).Count(&count).Error; err != nil {
		t.Fatalf("counting: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single insights row, got %d", count)
	}

	var got TextInsights
	if err := db.Where("lecture_id = ?", lecture.ID).First(&got).Error; err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if got.Summary != "second pass" {
		t.Errorf("expected replaced summary, got %q", got.Summary)
	}
	if len(got.KeyTerms) != 2 || len(got.ReviewQuestions) != 1 {
		t.Errorf("expected replaced slices, got terms=%v questions=%v",
			[]string(got.KeyTerms), []string(got.ReviewQuestions))
	}
}

func TestHasInsights(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()

	lecture := testLecture()
	if err := repo.CreateLecture(ctx, lecture); err != nil {
		t.Fatalf("insert lecture: %v", err)
	}

	exists, err := repo.HasInsights(ctx, lecture.ID)
	if err != nil {
		t.Fatalf("checking: %v", err)
	}
	if exists {
		t.Error("no insights row exists yet")
	}

	if err := repo.UpsertInsights(ctx, &TextInsights{LectureID: lecture.ID, Summary: "s"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	exists, err = repo.HasInsights(ctx, lecture.ID)
	if err != nil {
		t.Fatalf("checking: %v", err)
	}
	if !exists {
		t.Error("expected the insights row to be found")
	}
}

func TestListSessions(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()

	a := testLecture()
	b := testLecture()
	b.ClassNumber = "MBA530"
	b.Date = "2024-01-17"
	for _, l := range []*Lecture{a, b} {
		if err := repo.CreateLecture(ctx, l); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	sessions, err := repo.ListSessions(ctx)
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}

	keys := make(map[string]bool)
	for _, s := range sessions {
		if len(s.Date) != 10 {
			t.Errorf("date must be normalized to YYYY-MM-DD, got %q", s.Date)
		}
		keys[s.Key()] = true
	}
	if !keys["MBA505|2024-01-15"] || !keys["MBA530|2024-01-17"] {
		t.Errorf("unexpected sessions: %v", sessions)
	}
}

func TestDeleteLecture_CascadesToDependents(t *testing.T) {
	repo, db := testRepo(t)
	ctx := context.Background()

	lecture := testLecture()
	if err := repo.CreateLecture(ctx, lecture); err != nil {
		t.Fatalf("insert lecture: %v", err)
	}
	if err := repo.CreateSegments(ctx, []TranscriptSegment{
		{LectureID: lecture.ID, StartTime: 0, EndTime: 1, Text: "x", SegmentOrder: 1},
	}); err != nil {
		t.Fatalf("insert segments: %v", err)
	}
	if err := repo.CreateText(ctx, &LectureText{LectureID: lecture.ID, Text: "x"}); err != nil {
		t.Fatalf("insert text: %v", err)
	}
	if err := repo.UpsertInsights(ctx, &TextInsights{LectureID: lecture.ID, Summary: "x"}); err != nil {
		t.Fatalf("insert insights: %v", err)
	}

	if err := repo.DeleteLecture(ctx, lecture.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	for name, model := range map[string]interface{}{
		"lectures": &Lecture{},
		"segments": &TranscriptSegment{},
		"texts":    &LectureText{},
		"insights": &TextInsights{},
	} {
		var count int64
		if err := db.Model(model).Count(&count).Error; err != nil {
			t.Fatalf("counting %s: %v", name, err)
		}
		if count != 0 {
			t.Errorf("expected %s emptied by the cascade, got %d rows", name, count)
		}
	}
}
