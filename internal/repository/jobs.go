package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/osmaddr/extractor/internal/common"
	"github.com/osmaddr/extractor/internal/entity"
)

// JobStore is the durable claim state shared by all worker processes. It is
// the only cross-worker synchronization point in the system.
type JobStore interface {
	// ClaimNext attempts, in order, to claim each candidate key and returns
	// the first success, or "" when no key is claimable. The decision per
	// key is a single conditional upsert: a new key inserts as processing,
	// an existing retry row is rewritten to processing, and every other
	// status loses the conflict and is skipped. Two concurrent callers can
	// never both win the same key.
	ClaimNext(ctx context.Context, ownerID string, keys []string) (string, error)
	MarkCompleted(ctx context.Context, key string, recordsSaved int64) error
	MarkCompletedWithLimit(ctx context.Context, key string, recordsSaved int64) error
	MarkSkipped(ctx context.Context, key string, reason entity.SkipReason) error
	// Release deletes the claim row entirely, returning the key to the
	// unclaimed pool. Guarded by the owner id so a stale worker cannot
	// delete a claim it no longer holds.
	Release(ctx context.Context, key, ownerID string) error
	CountByStatus(ctx context.Context) (map[entity.JobStatus]int64, error)
	ListByStatus(ctx context.Context, status entity.JobStatus, limit int) ([]entity.Job, error)
}

type jobStore struct {
	db  *sql.DB
	log *slog.Logger
}

func NewJobStore(db *DB, log *slog.Logger) JobStore {
	if log == nil {
		log = slog.Default()
	}
	return &jobStore{db: db.SQL, log: log}
}

const claimQuery = `
INSERT INTO country_status (country_code, worker_id, status, started_at)
VALUES ($1, $2, 'processing', $3)
ON CONFLICT (country_code) DO UPDATE SET
	worker_id     = excluded.worker_id,
	status        = excluded.status,
	started_at    = excluded.started_at,
	completed_at  = NULL,
	skipped_at    = NULL,
	skip_reason   = NULL,
	records_saved = 0,
	limit_reached = FALSE
WHERE country_status.status = 'retry'
RETURNING country_code`

func (s *jobStore) ClaimNext(ctx context.Context, ownerID string, keys []string) (string, error) {
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		var claimed string
		err := s.db.QueryRowContext(ctx, claimQuery, key, ownerID, time.Now().UTC()).Scan(&claimed)
		if errors.Is(err, sql.ErrNoRows) {
			// Held or terminal; move on.
			continue
		}
		if err != nil {
			return "", common.WrapError(err, "claim job")
		}
		s.log.Info("job claimed", "country", claimed, "owner", ownerID)
		return claimed, nil
	}
	return "", nil
}

func (s *jobStore) MarkCompleted(ctx context.Context, key string, recordsSaved int64) error {
	return s.finish(ctx, key, entity.StatusCompleted, recordsSaved, false)
}

func (s *jobStore) MarkCompletedWithLimit(ctx context.Context, key string, recordsSaved int64) error {
	return s.finish(ctx, key, entity.StatusCompletedWithLimit, recordsSaved, true)
}

// finish is idempotent: repeating a terminal mark leaves the row unchanged,
// including the first completion timestamp.
func (s *jobStore) finish(ctx context.Context, key string, status entity.JobStatus, recordsSaved int64, limitReached bool) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE country_status SET
			status        = $2,
			records_saved = $3,
			limit_reached = $4,
			completed_at  = COALESCE(completed_at, $5)
		WHERE country_code = $1`,
		key, status, recordsSaved, limitReached, time.Now().UTC())
	if err != nil {
		s.log.Error("job finish failed", "country", key, "status", status, "error", err)
		return common.WrapError(err, "mark job finished")
	}
	s.log.Info("job finished", "country", key, "status", status, "records_saved", recordsSaved)
	return nil
}

func (s *jobStore) MarkSkipped(ctx context.Context, key string, reason entity.SkipReason) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE country_status SET
			status      = $2,
			skip_reason = $3,
			skipped_at  = COALESCE(skipped_at, $4)
		WHERE country_code = $1`,
		key, entity.StatusSkipped, reason, time.Now().UTC())
	if err != nil {
		s.log.Error("job skip failed", "country", key, "reason", reason, "error", err)
		return common.WrapError(err, "mark job skipped")
	}
	s.log.Warn("job skipped", "country", key, "reason", reason)
	return nil
}

func (s *jobStore) Release(ctx context.Context, key, ownerID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM country_status
		WHERE country_code = $1 AND worker_id = $2 AND status = 'processing'`,
		key, ownerID)
	if err != nil {
		s.log.Error("job release failed", "country", key, "error", err)
		return common.WrapError(err, "release job")
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.log.Info("job released", "country", key, "owner", ownerID)
	}
	return nil
}

func (s *jobStore) CountByStatus(ctx context.Context) (map[entity.JobStatus]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM country_status GROUP BY status`)
	if err != nil {
		return nil, common.WrapError(err, "count jobs by status")
	}
	defer rows.Close()

	counts := make(map[entity.JobStatus]int64)
	for rows.Next() {
		var status entity.JobStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, common.WrapError(err, "scan status count")
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (s *jobStore) ListByStatus(ctx context.Context, status entity.JobStatus, limit int) ([]entity.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT country_code, worker_id, status, started_at,
		       completed_at, skipped_at, skip_reason, records_saved, limit_reached
		FROM country_status
		WHERE status = $1
		ORDER BY started_at
		LIMIT $2`,
		status, limit)
	if err != nil {
		return nil, common.WrapError(err, "list jobs")
	}
	defer rows.Close()

	var jobs []entity.Job
	for rows.Next() {
		var (
			j           entity.Job
			completedAt sql.NullTime
			skippedAt   sql.NullTime
			skipReason  sql.NullString
		)
		if err := rows.Scan(&j.CountryCode, &j.WorkerID, &j.Status, &j.StartedAt,
			&completedAt, &skippedAt, &skipReason, &j.RecordsSaved, &j.LimitReached); err != nil {
			return nil, common.WrapError(err, "scan job")
		}
		if completedAt.Valid {
			t := completedAt.Time
			j.CompletedAt = &t
		}
		if skippedAt.Valid {
			t := skippedAt.Time
			j.SkippedAt = &t
		}
		if skipReason.Valid {
			r := entity.SkipReason(skipReason.String)
			j.SkipReason = &r
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
