package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/senah/lecture-transcriber/internal/config"
	"github.com/senah/lecture-transcriber/internal/dedupe"
	"github.com/senah/lecture-transcriber/internal/drive"
	"github.com/senah/lecture-transcriber/internal/insights"
	"github.com/senah/lecture-transcriber/internal/logger"
	"github.com/senah/lecture-transcriber/internal/metadata"
	"github.com/senah/lecture-transcriber/internal/pipeline"
	"github.com/senah/lecture-transcriber/internal/scan"
	"github.com/senah/lecture-transcriber/internal/store"
	"github.com/senah/lecture-transcriber/internal/transcribe"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	yes := flag.Bool("yes", false, "suppress interactive confirmations, auto-accept defaults")
	flag.Parse()

	if err := run(*configPath, *yes); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run performs one full pipeline run. Only setup errors propagate out;
// per-file failures are reported in the summary and do not change the
// exit status.
func run(configPath string, autoAccept bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// Credentials are checked before any file is scanned.
	creds, err := config.LoadCredentials()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	ctx := context.Background()

	sched, err := cfg.BuildSchedule()
	if err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}

	readDB, err := store.Open(creds.DatabaseURL, log)
	if err != nil {
		return err
	}
	writeDB, err := store.Open(creds.DatabaseServiceURL, log)
	if err != nil {
		return err
	}
	if err := store.AutoMigrate(writeDB); err != nil {
		return fmt.Errorf("failed to migrate lecture store: %w", err)
	}
	readRepo := store.NewLectureRepo(readDB, log)
	writeRepo := store.NewLectureRepo(writeDB, log)

	folders, err := metadata.LoadFolders(cfg.Metadata.FoldersFile)
	if err != nil {
		return err
	}

	// Drive is best-effort bookkeeping. Missing credentials degrade to
	// local-only processing rather than aborting the run.
	var driveClient *drive.Client
	if _, err := os.Stat(cfg.GoogleDrive.CredentialsFile); err == nil {
		driveClient, err = drive.NewClient(ctx, cfg.GoogleDrive.CredentialsFile, cfg.GoogleDrive.TokenFile)
		if err != nil {
			log.Warn("Google Drive not available, recordings will not be backed up", "error", err)
			driveClient = nil
		}
	} else {
		log.Warn("Google Drive credentials not found, recordings will not be backed up")
	}

	gemini, err := insights.NewGeminiClient(creds.GeminiAPIKey, cfg.Insights.Model, log)
	if err != nil {
		return err
	}

	var folderLister dedupe.FolderLister
	if driveClient != nil {
		folderLister = driveClient
	}
	index, err := dedupe.Build(ctx, readRepo, folderLister, folders, log)
	if err != nil {
		return err
	}

	scanner := scan.New(cfg.Recordings.Dir, cfg.Recordings.Extensions, log)
	candidates, err := scanner.Scan()
	if err != nil {
		return err
	}

	var confirmer pipeline.Confirmer = &pipeline.PromptConfirmer{In: os.Stdin, Out: os.Stdout}
	if autoAccept {
		confirmer = pipeline.AutoConfirmer{}
	}

	whisper := transcribe.NewWhisperTranscriber(cfg.Whisper.Model, cfg.Whisper.Language, log)
	transcribeStage := transcribe.NewStage(whisper, writeRepo, log)
	insightStage := insights.NewStage(gemini, writeRepo, cfg.Insights.MaxChunkChars, log)

	var uploader pipeline.Uploader
	if driveClient != nil {
		uploader = driveClient
	}

	pipe := pipeline.New(sched, metadata.NewReader(cfg.Metadata.Dir), index, folders,
		uploader, transcribeStage, insightStage, confirmer, log)

	summary := pipe.Run(ctx, candidates)

	log.Info("run complete",
		"insighted", summary.Insighted,
		"transcribed_only", summary.Transcribed,
		"failed", summary.Failed,
		"skipped", summary.TotalSkipped())
	for reason, count := range summary.Skipped {
		log.Info("skipped files", "reason", string(reason), "count", count)
	}
	for _, r := range summary.Results {
		if r.State == pipeline.StateFailed {
			log.Warn("file failed", "file", r.File.Name, "stage", r.FailStage, "error", r.Err)
		}
		if r.UploadErr != nil {
			log.Warn("recording not backed up to Drive, upload it manually if needed",
				"file", r.File.Name, "error", r.UploadErr)
		}
	}

	return nil
}
