// Package config loads the application configuration and validates the
// required credentials before anything else runs.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/senah/lecture-transcriber/internal/schedule"
)

// Config is the application configuration.
type Config struct {
	Recordings struct {
		Dir        string   `yaml:"dir"`
		Extensions []string `yaml:"extensions"`
	} `yaml:"recordings"`

	Metadata struct {
		Dir         string `yaml:"dir"`
		FoldersFile string `yaml:"folders_file"`
	} `yaml:"metadata"`

	Schedule []ScheduleEntry `yaml:"schedule"`

	Whisper struct {
		Model    string `yaml:"model"`
		Language string `yaml:"language"`
	} `yaml:"whisper"`

	Insights struct {
		Model         string `yaml:"model"`
		MaxChunkChars int    `yaml:"max_chunk_chars"`
	} `yaml:"insights"`

	GoogleDrive struct {
		CredentialsFile string `yaml:"credentials_file"`
		TokenFile       string `yaml:"token_file"`
	} `yaml:"google_drive"`

	Log struct {
		Mode string `yaml:"mode"`
	} `yaml:"log"`
}

// ScheduleEntry is one timetable slot in the config file.
type ScheduleEntry struct {
	Day   string `yaml:"day"`
	Start string `yaml:"start"`
	Class string `yaml:"class"`
}

// Credentials are the secrets read from the environment. All are
// validated before any file is scanned; a missing one is fatal.
type Credentials struct {
	// DatabaseURL is the read-tier store DSN used by the dedup index.
	DatabaseURL string
	// DatabaseServiceURL is the privileged store DSN used by the write
	// path.
	DatabaseServiceURL string
	// GeminiAPIKey authorizes the generative engine.
	GeminiAPIKey string
}

// Load reads the YAML config from path and applies defaults.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	if cfg.Recordings.Dir == "" {
		return nil, fmt.Errorf("config %s: recordings.dir is required", path)
	}
	if cfg.Metadata.Dir == "" {
		return nil, fmt.Errorf("config %s: metadata.dir is required", path)
	}
	if len(cfg.Recordings.Extensions) == 0 {
		cfg.Recordings.Extensions = []string{".wav"}
	}
	if cfg.Whisper.Model == "" {
		cfg.Whisper.Model = "base"
	}
	if cfg.Insights.MaxChunkChars == 0 {
		cfg.Insights.MaxChunkChars = 30000
	}
	if cfg.Log.Mode == "" {
		cfg.Log.Mode = "dev"
	}

	return &cfg, nil
}

// BuildSchedule converts the configured timetable into a Schedule. An
// empty timetable falls back to the built-in term table.
func (c *Config) BuildSchedule() (*schedule.Schedule, error) {
	if len(c.Schedule) == 0 {
		return schedule.Default(), nil
	}

	entries := make([]schedule.Entry, 0, len(c.Schedule))
	for _, e := range c.Schedule {
		day, err := parseWeekday(e.Day)
		if err != nil {
			return nil, err
		}
		entries = append(entries, schedule.Entry{Day: day, Start: e.Start, ClassCode: e.Class})
	}
	return schedule.New(entries)
}

func parseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mon", "monday":
		return time.Monday, nil
	case "tue", "tues", "tuesday":
		return time.Tuesday, nil
	case "wed", "wednesday":
		return time.Wednesday, nil
	case "thu", "thurs", "thursday":
		return time.Thursday, nil
	case "fri", "friday":
		return time.Friday, nil
	case "sat", "saturday":
		return time.Saturday, nil
	case "sun", "sunday":
		return time.Sunday, nil
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// LoadCredentials reads and validates the required secrets. Every missing
// variable is reported at once so setup is a single round trip.
func LoadCredentials() (Credentials, error) {
	creds := Credentials{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		DatabaseServiceURL: os.Getenv("DATABASE_SERVICE_URL"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
	}

	var missing []string
	if creds.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if creds.DatabaseServiceURL == "" {
		missing = append(missing, "DATABASE_SERVICE_URL")
	}
	if creds.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if len(missing) > 0 {
		return Credentials{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return creds, nil
}
