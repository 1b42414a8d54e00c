package pipeline

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"github.com/osmaddr/extractor/internal/countries"
	"github.com/osmaddr/extractor/internal/entity"
	"github.com/osmaddr/extractor/internal/memory"
	"github.com/osmaddr/extractor/internal/pbf"
	"github.com/osmaddr/extractor/internal/repository"
)

// State is the pipeline's job-level state. LimitReached and Done are
// terminal; once either is entered every further callback is a cheap no-op
// that also tells the decoder to stop.
type State int

const (
	StateRunning State = iota
	StateLimitReached
	StateDone
)

// Job identifies the country a pipeline run is extracting for.
type Job struct {
	CountryCode string
	CountryName string
	WorkerID    string
}

// Extractor filters a decoded element stream into validated address
// candidates, batching them into the record store under an output cap and a
// memory ceiling. Both stopping conditions are graceful: the job still
// completes, carrying the count it saved and the limit flag.
type Extractor struct {
	cfg    Config
	job    Job
	store  repository.RecordStore
	guard  memory.Guard
	logger *slog.Logger

	ctx        context.Context
	state      State
	batch      []entity.AddressCandidate
	processed  int64
	found      int64
	totalSaved int64
	err        error
}

func NewExtractor(cfg Config, job Job, store repository.RecordStore, guard memory.Guard, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		cfg:    cfg,
		job:    job,
		store:  store,
		guard:  guard,
		logger: logger,
		batch:  make([]entity.AddressCandidate, 0, cfg.BatchSize),
	}
}

// Run decodes the artifact at path through this extractor in one forward
// pass, then flushes any remainder. Returns decode or store errors; an
// early stop from the cap or memory pressure is not an error.
func (e *Extractor) Run(ctx context.Context, dec *pbf.Decoder, path string) error {
	e.ctx = ctx
	if err := dec.Decode(ctx, path, e); err != nil {
		return err
	}
	if e.err != nil {
		return e.err
	}
	return e.finish()
}

func (e *Extractor) State() State      { return e.state }
func (e *Extractor) Processed() int64  { return e.processed }
func (e *Extractor) Found() int64      { return e.found }
func (e *Extractor) TotalSaved() int64 { return e.totalSaved }

// HandleNode implements pbf.Handler.
func (e *Extractor) HandleNode(n pbf.Node) bool {
	return e.handle(n.Tags, nil, e.cfg.NodeCheckEvery)
}

// HandleWay implements pbf.Handler.
func (e *Extractor) HandleWay(w pbf.Way) bool {
	return e.handle(w.Tags, w.Points, e.cfg.WayCheckEvery)
}

func (e *Extractor) handle(tags pbf.Tags, points []pbf.Point, checkEvery int) bool {
	e.processed++

	if checkEvery > 0 && e.processed%int64(checkEvery) == 0 && e.state == StateRunning {
		if !e.guard.RequestRelief(e.reliefFlush) {
			// Memory exhaustion is handled like the output cap: flush what
			// we have and stop early, successfully.
			e.flush()
			e.state = StateLimitReached
			e.logger.Warn("pipeline.stopped.memory",
				"country", e.job.CountryCode,
				"processed", e.processed,
				"saved", e.totalSaved,
			)
			return false
		}
	}
	if e.cfg.ProgressEvery > 0 && e.processed%e.cfg.ProgressEvery == 0 {
		e.logger.Info("pipeline.progress",
			"country", e.job.CountryCode,
			"processed", e.processed,
			"found", e.found,
			"saved", e.totalSaved,
		)
	}

	if e.state != StateRunning || e.err != nil {
		return false
	}
	if e.ctx != nil && e.ctx.Err() != nil {
		return false
	}

	if !hasAddressTags(tags) {
		return true
	}
	if points != nil {
		if area := pbf.BoundedBBoxArea(points, e.cfg.BBoxSampleCap); area > e.cfg.BBoxCeilingM2 {
			return true
		}
	}

	e.process(tags)
	return e.state == StateRunning && e.err == nil
}

func (e *Extractor) process(tags pbf.Tags) {
	c := extractComponents(tags)

	code := c.countryCode
	if code == "" {
		code = e.job.CountryCode
	}
	countryName := countries.Name(code)
	if countryName == "" {
		countryName = e.job.CountryName
	}

	full := formatFullAddress(c, countryName)
	if full == "" || utf8.RuneCountInString(full) <= 30 {
		return
	}
	if c.city == "" || c.city == "Unknown" {
		return
	}
	if !AddressLooksValid(full) {
		return
	}

	e.batch = append(e.batch, entity.AddressCandidate{
		StreetName:  c.street,
		City:        c.city,
		FullAddress: full,
	})
	e.found++

	if len(e.batch) >= e.cfg.BatchSize {
		e.flush()
		if e.err == nil && e.totalSaved >= e.cfg.AddressCap {
			e.state = StateLimitReached
			e.logger.Info("pipeline.cap.reached",
				"country", e.job.CountryCode,
				"saved", e.totalSaved,
				"cap", e.cfg.AddressCap,
			)
		}
	}
}

// reliefFlush is handed to the resource guard so relief empties the buffer
// before forcing a reclaim pass.
func (e *Extractor) reliefFlush() {
	e.flush()
}

func (e *Extractor) flush() {
	if len(e.batch) == 0 || e.err != nil {
		return
	}

	rows := make([]entity.StoredAddress, len(e.batch))
	for i, cand := range e.batch {
		rows[i] = entity.StoredAddress{
			Country:     e.job.CountryCode,
			CountryName: e.job.CountryName,
			StreetName:  cand.StreetName,
			City:        cand.City,
			FullAddress: cand.FullAddress,
			WorkerID:    e.job.WorkerID,
		}
	}

	ctx := e.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	inserted, err := e.store.Save(ctx, rows)
	if err != nil {
		e.err = err
		return
	}
	e.totalSaved += inserted
	e.batch = e.batch[:0]
	e.logger.Debug("pipeline.batch.saved",
		"country", e.job.CountryCode,
		"batch", len(rows),
		"inserted", inserted,
		"total_saved", e.totalSaved,
	)
}

// finish flushes the tail of the stream, truncated so the total never
// exceeds the cap, and settles the terminal state.
func (e *Extractor) finish() error {
	if e.state != StateRunning {
		return nil
	}

	truncated := false
	if remaining := e.cfg.AddressCap - e.totalSaved; int64(len(e.batch)) > remaining {
		if remaining < 0 {
			remaining = 0
		}
		e.batch = e.batch[:remaining]
		truncated = true
	}
	e.flush()
	if e.err != nil {
		return e.err
	}

	if truncated || e.totalSaved >= e.cfg.AddressCap {
		e.state = StateLimitReached
	} else {
		e.state = StateDone
	}
	e.logger.Info("pipeline.finished",
		"country", e.job.CountryCode,
		"processed", e.processed,
		"found", e.found,
		"saved", e.totalSaved,
		"limit_reached", e.state == StateLimitReached,
	)
	return nil
}
