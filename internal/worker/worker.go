package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/osmaddr/extractor/internal/countries"
	"github.com/osmaddr/extractor/internal/entity"
	"github.com/osmaddr/extractor/internal/memory"
	"github.com/osmaddr/extractor/internal/pbf"
	"github.com/osmaddr/extractor/internal/pipeline"
	"github.com/osmaddr/extractor/internal/repository"
	"github.com/osmaddr/extractor/internal/source"
)

// releaseTimeout bounds the release attempt during shutdown, when the run
// context is already canceled.
const releaseTimeout = 10 * time.Second

// Worker drives the claim → fetch → extract → mark loop for one process.
// Parallelism comes from running many workers; inside one worker the decode
// path is strictly sequential.
type Worker struct {
	id      string
	ownerID string
	profile Profile

	jobs    repository.JobStore
	records repository.RecordStore
	fetcher *source.Fetcher
	guard   memory.Guard
	decoder *pbf.Decoder
	catalog []countries.Country
	logger  *slog.Logger

	// released holds keys this run gave back to the pool. They stay
	// claimable by other workers but are not re-attempted by this run,
	// so one broken country cannot monopolize a worker.
	released map[string]bool
}

func New(id string, profile Profile, jobs repository.JobStore, records repository.RecordStore,
	fetcher *source.Fetcher, guard memory.Guard, catalog []countries.Country, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	// The owner id carries a per-run token so a restarted worker with the
	// same CLI identity cannot release a claim its previous life held.
	ownerID := fmt.Sprintf("%s:%s", id, uuid.New().String())
	return &Worker{
		id:       id,
		ownerID:  ownerID,
		profile:  profile,
		jobs:     jobs,
		records:  records,
		fetcher:  fetcher,
		guard:    guard,
		decoder:  pbf.NewDecoder(),
		catalog:  countries.Ordered(catalog, profile.ClaimOrder),
		logger:   logger.With("worker", id),
		released: make(map[string]bool),
	}
}

// Run claims and processes jobs until no eligible job remains or the
// context is canceled. A canceled context is a clean shutdown: the held
// claim, if any, is released before returning.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("worker starting",
		"owner", w.ownerID,
		"profile", w.profile.Name,
		"countries", len(w.catalog),
	)

	keys := make([]string, len(w.catalog))
	byCode := make(map[string]countries.Country, len(w.catalog))
	for i, c := range w.catalog {
		keys[i] = c.Code
		byCode[c.Code] = c
	}

	for {
		if ctx.Err() != nil {
			w.logger.Info("shutdown requested, not claiming further work")
			return nil
		}

		eligible := keys
		if len(w.released) > 0 {
			eligible = make([]string, 0, len(keys))
			for _, k := range keys {
				if !w.released[k] {
					eligible = append(eligible, k)
				}
			}
		}

		key, err := w.jobs.ClaimNext(ctx, w.ownerID, eligible)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("claim next job: %w", err)
		}
		if key == "" {
			w.logger.Info("no more countries to process")
			return nil
		}

		if err := w.processJob(ctx, byCode[key]); err != nil {
			return err
		}
	}
}

// processJob runs one claimed country to a terminal mark, or releases the
// claim on every path that cannot reach one. An error return means the job
// store itself is unreachable and the worker should die.
func (w *Worker) processJob(ctx context.Context, c countries.Country) error {
	log := w.logger.With("country", c.Code)
	log.Info("processing country", "name", c.Name)

	artifact, err := w.fetcher.EnsurePresent(ctx, c.Code, c.Name)
	if err != nil {
		if ctx.Err() != nil {
			w.release(c.Code)
			return nil
		}
		if errors.Is(err, source.ErrNoSource) {
			return w.jobs.MarkSkipped(ctx, c.Code, entity.SkipNoSourceURL)
		}
		log.Warn("artifact download failed", "error", err)
		return w.jobs.MarkSkipped(ctx, c.Code, entity.SkipDownloadFailed)
	}

	fi, err := os.Stat(artifact)
	if err != nil {
		log.Warn("artifact missing after download", "path", artifact, "error", err)
		return w.jobs.MarkSkipped(ctx, c.Code, entity.SkipNoInputArtifact)
	}
	if !w.guard.ShouldAdmit(fi.Size()) {
		log.Warn("artifact too large for available memory", "size_bytes", fi.Size())
		return w.jobs.MarkSkipped(ctx, c.Code, entity.SkipFileTooLarge)
	}

	ext := pipeline.NewExtractor(w.profile.Pipeline, pipeline.Job{
		CountryCode: c.Code,
		CountryName: c.Name,
		WorkerID:    w.id,
	}, w.records, w.guard, w.logger)

	runErr := ext.Run(ctx, w.decoder, artifact)

	if ctx.Err() != nil {
		// Shutdown mid-stream: the claim goes back to the pool untouched.
		w.release(c.Code)
		return nil
	}
	if runErr != nil {
		if pbf.IsMemoryError(runErr) {
			log.Error("extraction hit memory limits", "error", runErr)
			return w.jobs.MarkSkipped(ctx, c.Code, entity.SkipMemoryError)
		}
		// The artifact downloaded whole but cannot be decoded; evict it so
		// the retry fetches a fresh copy instead of re-reading the same
		// corrupt file forever.
		log.Error("extraction failed, releasing for retry", "error", runErr)
		w.fetcher.Discard(c.Code)
		w.release(c.Code)
		return nil
	}

	switch ext.State() {
	case pipeline.StateLimitReached:
		return w.jobs.MarkCompletedWithLimit(ctx, c.Code, ext.TotalSaved())
	case pipeline.StateDone:
		return w.jobs.MarkCompleted(ctx, c.Code, ext.TotalSaved())
	default:
		// Decoder stopped without an error or a terminal state; treat as
		// retryable.
		w.release(c.Code)
		return nil
	}
}

// release returns the claim to the unclaimed pool on a fresh context, since
// the run context may already be canceled. The key is remembered so this
// run does not immediately re-claim what it just gave back.
func (w *Worker) release(code string) {
	w.released[code] = true
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	if err := w.jobs.Release(ctx, code, w.ownerID); err != nil {
		w.logger.Error("failed to release claim", "country", code, "error", err)
	}
}
