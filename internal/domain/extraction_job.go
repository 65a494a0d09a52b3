package domain

import "time"

// JobStatus represents the status of an asynchronous extraction job.
// Values include JobStatusPending, JobStatusCompleted, and JobStatusFailed.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether the job can no longer change state.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// ExtractionJob represents one accepted asynchronous request to the
// extraction service, tracked until the reconciler drives it to a terminal
// outcome. CompletedAt is set exactly when the status turns terminal; a
// terminal job is never re-opened.
type ExtractionJob struct {
	ID            string     `gorm:"type:text;primaryKey" json:"id"`
	ExternalJobID string     `gorm:"type:text;not null;index" json:"external_job_id"`
	SourceURL     string     `gorm:"type:text;not null" json:"source_url"`
	CrawlType     CrawlType  `gorm:"type:text;not null" json:"crawl_type"`
	Status        JobStatus  `gorm:"type:text;index:idx_extraction_jobs_status;default:pending" json:"status"`
	ErrorMessage  *string    `json:"error_message,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName returns the database table name for ExtractionJob.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (ExtractionJob) TableName() string {
	return "extraction_jobs"
}
