package entity

import "time"

// JobStatus is the lifecycle state of a country job.
type JobStatus string

const (
	StatusProcessing         JobStatus = "processing"
	StatusCompleted          JobStatus = "completed"
	StatusCompletedWithLimit JobStatus = "completed_with_limit"
	StatusSkipped            JobStatus = "skipped"
	StatusRetry              JobStatus = "retry"
)

// SkipReason explains why a job was permanently skipped.
type SkipReason string

const (
	SkipNoSourceURL     SkipReason = "no_source_url"
	SkipDownloadFailed  SkipReason = "download_failed"
	SkipFileTooLarge    SkipReason = "file_too_large"
	SkipMemoryError     SkipReason = "memory_error"
	SkipNoInputArtifact SkipReason = "no_input_artifact"
)

// Job represents one country's claim record for data transfer between layers.
// A row exists only while a job is claimed or after it reached a terminal
// state; releasing a claim deletes the row so the key becomes claimable again.
type Job struct {
	CountryCode  string      `json:"country_code"`
	WorkerID     string      `json:"worker_id"`
	Status       JobStatus   `json:"status"`
	StartedAt    time.Time   `json:"started_at"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
	SkippedAt    *time.Time  `json:"skipped_at,omitempty"`
	SkipReason   *SkipReason `json:"skip_reason,omitempty"`
	RecordsSaved int64       `json:"records_saved"`
	LimitReached bool        `json:"limit_reached"`
}
