package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/osmaddr/extractor/internal/entity"
	"github.com/osmaddr/extractor/internal/repository"
)

// Service is a tiny façade over the stores that produces XLSX bytes for
// operator status reports.
type Service struct {
	jobs    repository.JobStore
	records repository.RecordStore
	logger  *slog.Logger
}

func NewService(jobs repository.JobStore, records repository.RecordStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{jobs: jobs, records: records, logger: logger}
}

var reportStatuses = []entity.JobStatus{
	entity.StatusProcessing,
	entity.StatusCompleted,
	entity.StatusCompletedWithLimit,
	entity.StatusSkipped,
	entity.StatusRetry,
}

// ExportStatusXLSX returns a workbook with a summary sheet and one row per
// known job.
func (s *Service) ExportStatusXLSX(ctx context.Context, perStatusLimit int) ([]byte, error) {
	start := time.Now()

	counts, err := s.jobs.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("query status counts: %w", err)
	}
	totalAddresses, err := s.records.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("query address total: %w", err)
	}

	f := excelize.NewFile()

	const summary = "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, err
	}
	_ = f.SetCellValue(summary, "A1", "Status")
	_ = f.SetCellValue(summary, "B1", "Countries")
	row := 2
	for _, st := range reportStatuses {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(summary, cell, string(st))
		cell, _ = excelize.CoordinatesToCellName(2, row)
		_ = f.SetCellValue(summary, cell, counts[st])
		row++
	}
	cell, _ := excelize.CoordinatesToCellName(1, row+1)
	_ = f.SetCellValue(summary, cell, "Total addresses")
	cell, _ = excelize.CoordinatesToCellName(2, row+1)
	_ = f.SetCellValue(summary, cell, totalAddresses)

	const sheet = "Countries"
	if _, err := f.NewSheet(sheet); err != nil {
		return nil, err
	}
	headers := []string{"Country", "Status", "Worker", "Started", "Finished", "Skip Reason", "Records Saved", "Limit Reached"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row = 2
	for _, st := range reportStatuses {
		jobs, err := s.jobs.ListByStatus(ctx, st, perStatusLimit)
		if err != nil {
			return nil, fmt.Errorf("list %s jobs: %w", st, err)
		}
		for _, j := range jobs {
			finished := ""
			if j.CompletedAt != nil {
				finished = j.CompletedAt.Format(time.RFC3339)
			} else if j.SkippedAt != nil {
				finished = j.SkippedAt.Format(time.RFC3339)
			}
			reason := ""
			if j.SkipReason != nil {
				reason = string(*j.SkipReason)
			}
			values := []any{
				j.CountryCode,
				string(j.Status),
				j.WorkerID,
				j.StartedAt.Format(time.RFC3339),
				finished,
				reason,
				j.RecordsSaved,
				j.LimitReached,
			}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				_ = f.SetCellValue(sheet, cell, v)
			}
			row++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	s.logger.Info("status report exported",
		"rows", row-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
