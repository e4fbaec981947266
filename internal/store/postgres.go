package store

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/senah/lecture-transcriber/internal/logger"
)

// Open connects to the lecture store with the given DSN. The read tier DSN
// (anon role) is used for the dedup index; the privileged DSN (service
// role) is used for the write path. The two tiers are separate database
// roles, so each gets its own connection.
func Open(dsn string, logg *logger.Logger) (*gorm.DB, error) {
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to lecture store: %w", err)
	}
	logg.Info("lecture store connected")
	return db, nil
}

// AutoMigrate creates or updates the lecture tables. Run with the
// privileged connection only.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Lecture{},
		&TranscriptSegment{},
		&LectureText{},
		&TextInsights{},
		&Speaker{},
	)
}
