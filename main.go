package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"collegedunia-scraper/collector"
	"collegedunia-scraper/config"
	"collegedunia-scraper/scraper/collegedunia"
	"collegedunia-scraper/services"
	"collegedunia-scraper/storage"
	"collegedunia-scraper/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewFileLogger(cfg.LogFilePath)

	logger.Info("=== CollegeDunia Collection System starting ===")
	logger.Info("Config — listing: %s | start page: %d | max pages: %d | target: %d",
		cfg.ListingURL, cfg.StartPage, cfg.MaxPages, cfg.TargetCount)

	store, err := storage.Load(cfg.CheckpointPath)
	if err != nil {
		logger.Error("Failed to load checkpoint: %v", err)
		os.Exit(1)
	}
	if store.Len() > 0 {
		logger.Info("Resuming — %d colleges loaded from %s", store.Len(), cfg.CheckpointPath)
	}

	timeout := time.Duration(cfg.RequestTimeoutSec) * time.Second
	var fetcher collector.Fetcher
	if cfg.UseBrowser {
		fetcher = collegedunia.NewBrowserFetcher(cfg.ListingURL, timeout, cfg.ChromeBin, logger)
	} else {
		fetcher = collegedunia.NewHTTPFetcher(cfg.ListingURL, timeout, logger)
	}

	ctrl := collector.New(collector.Options{
		ListingURL:  cfg.ListingURL,
		StartPage:   cfg.StartPage,
		MaxPages:    cfg.MaxPages,
		TargetCount: cfg.TargetCount,
		SleepMin:    time.Duration(cfg.SleepMinMs) * time.Millisecond,
		SleepMax:    time.Duration(cfg.SleepMaxMs) * time.Millisecond,
	}, fetcher, collegedunia.NewParser(), store, services.NewCleaner(logger), logger)

	// Ctrl-C / SIGTERM stops the run between page iterations; everything
	// checkpointed so far stays on disk and the next run resumes from it.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, runErr := ctrl.Run(ctx)
	if runErr != nil {
		logger.Error("Run aborted: %v", runErr)
	}

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(insightSvc.Generate(store.Colleges()))

	if cfg.PostgresMirror {
		mirrorToPostgres(cfg, store, logger)
	}

	fmt.Printf("  Done. Reason: %s | %d colleges → %s\n\n",
		sum.Reason, store.Len(), cfg.CheckpointPath)

	if runErr != nil {
		os.Exit(1)
	}
}

// mirrorToPostgres copies the collected set into PostgreSQL. Mirror failures
// are logged, not fatal: the CSV checkpoint is the durable source of truth.
func mirrorToPostgres(cfg *config.Config, store *storage.Store, logger *utils.Logger) {
	pg, err := storage.NewPostgresWriter(cfg.DSN(), logger)
	if err != nil {
		logger.Error("PostgreSQL mirror unavailable: %v", err)
		return
	}
	defer pg.Close()

	if err := pg.Write(store.Colleges()); err != nil {
		logger.Error("PostgreSQL mirror write failed: %v", err)
		return
	}
	logger.Info("Mirrored %d colleges to PostgreSQL (table: colleges)", store.Len())
}
