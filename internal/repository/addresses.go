package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"strconv"
	"strings"

	"github.com/osmaddr/extractor/internal/common"
	"github.com/osmaddr/extractor/internal/entity"
)

// RecordStore is the deduplicated sink for extracted addresses.
type RecordStore interface {
	// Save bulk-inserts a batch, silently ignoring rows whose
	// (country, fulladdress) natural key already exists. Returns the number
	// of rows actually inserted; a duplicate never fails the batch.
	Save(ctx context.Context, batch []entity.StoredAddress) (int64, error)
	CountForCountry(ctx context.Context, country string) (int64, error)
	CountAll(ctx context.Context) (int64, error)
}

type recordStore struct {
	db  *sql.DB
	log *slog.Logger
}

func NewRecordStore(db *DB, log *slog.Logger) RecordStore {
	if log == nil {
		log = slog.Default()
	}
	return &recordStore{db: db.SQL, log: log}
}

// insertChunk bounds the placeholder count per statement.
const insertChunk = 100

func (s *recordStore) Save(ctx context.Context, batch []entity.StoredAddress) (int64, error) {
	var inserted int64
	for start := 0; start < len(batch); start += insertChunk {
		end := start + insertChunk
		if end > len(batch) {
			end = len(batch)
		}
		n, err := s.saveChunk(ctx, batch[start:end])
		if err != nil {
			return inserted, err
		}
		inserted += n
	}
	return inserted, nil
}

func (s *recordStore) saveChunk(ctx context.Context, chunk []entity.StoredAddress) (int64, error) {
	if len(chunk) == 0 {
		return 0, nil
	}

	var (
		sb   strings.Builder
		args = make([]any, 0, len(chunk)*7)
	)
	sb.WriteString(`INSERT INTO address
		(country, country_name, street_name, city, fulladdress, status, worker_id) VALUES `)
	for i, a := range chunk {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 7
		sb.WriteString("(")
		for j := 1; j <= 7; j++ {
			if j > 1 {
				sb.WriteString(", ")
			}
			sb.WriteString("$" + strconv.Itoa(base+j))
		}
		sb.WriteString(")")
		args = append(args, a.Country, a.CountryName, a.StreetName, a.City,
			a.FullAddress, a.ProcessingState, a.WorkerID)
	}
	sb.WriteString(` ON CONFLICT (country, fulladdress) DO NOTHING`)

	res, err := s.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		s.log.Error("address batch save failed", "batch_size", len(chunk), "error", err)
		return 0, common.WrapError(err, "save address batch")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, common.WrapError(err, "count inserted addresses")
	}
	return n, nil
}

func (s *recordStore) CountForCountry(ctx context.Context, country string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM address WHERE country = $1`, country).Scan(&n)
	if err != nil {
		return 0, common.WrapError(err, "count addresses for country")
	}
	return n, nil
}

func (s *recordStore) CountAll(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM address`).Scan(&n); err != nil {
		return 0, common.WrapError(err, "count addresses")
	}
	return n, nil
}
