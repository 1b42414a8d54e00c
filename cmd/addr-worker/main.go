package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/osmaddr/extractor/internal/common"
	"github.com/osmaddr/extractor/internal/countries"
	"github.com/osmaddr/extractor/internal/memory"
	"github.com/osmaddr/extractor/internal/repository"
	"github.com/osmaddr/extractor/internal/source"
	"github.com/osmaddr/extractor/internal/worker"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		inmem       = flag.Bool("inmem", false, "use in-memory SQLite database (local development)")
		profileName = flag.String("profile", "default", "parameter profile: default, memory-safe, huge-countries")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		printError("Usage: addr-worker [flags] <worker_id>\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	workerID := flag.Arg(0)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := common.LoadConfig()
	if !*inmem {
		if err := cfg.Validate(); err != nil {
			logger.Error("invalid configuration", "error", err)
			os.Exit(1)
		}
	}

	profile, err := worker.ProfileByName(*profileName)
	if err != nil {
		logger.Error("invalid profile", "error", err)
		os.Exit(1)
	}

	var db *repository.DB
	if *inmem {
		db, err = repository.OpenSQLite("file::memory:?cache=shared", logger)
	} else {
		db, err = repository.Open(ctx, cfg.Database, logger)
	}
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close(logger)

	if err := db.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	catalog := countries.Default()
	if cfg.Source.CountriesFile != "" {
		catalog, err = countries.Load(cfg.Source.CountriesFile)
		if err != nil {
			logger.Error("failed to load countries file", "path", cfg.Source.CountriesFile, "error", err)
			os.Exit(1)
		}
	}

	memCfg := cfg.Memory
	memCfg.CeilingPercent = profile.CeilingPercent
	memCfg.CriticalPercent = profile.CriticalPercent
	guard := memory.NewGuard(memCfg, logger)

	fetcher := source.NewFetcher(cfg.Source.WorkDir, cfg.Source.DownloadTimeout, cfg.Source.MaxAttempts, logger)

	jobs := repository.NewJobStore(db, logger)
	records := repository.NewRecordStore(db, logger)

	w := worker.New(workerID, profile, jobs, records, fetcher, guard, catalog, logger)
	if err := w.Run(ctx); err != nil {
		logger.Error("worker failed", "error", err)
		os.Exit(1)
	}
	logger.Info("worker shutdown complete")
}
