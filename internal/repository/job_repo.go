package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/guanghao479/golden/internal/domain"
	"gorm.io/gorm"
)

// JobRepository handles outstanding asynchronous extraction jobs.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new JobRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *JobRepository: repository instance bound to db.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new pending extraction job.
func (r *JobRepository) Create(ctx context.Context, job *domain.ExtractionJob) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = domain.JobStatusPending
	}
	return r.db.WithContext(ctx).Create(job).Error
}

// ListPending returns all non-terminal jobs. Terminal jobs are excluded by
// the query itself, so a sweep over the result with nothing new to do is a
// true no-op.
func (r *JobRepository) ListPending(ctx context.Context) ([]domain.ExtractionJob, error) {
	var jobs []domain.ExtractionJob
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.JobStatusPending).
		Order("created_at ASC").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// MarkCompleted moves the job to its terminal completed state.
// Terminal jobs are never re-opened.
func (r *JobRepository) MarkCompleted(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.ExtractionJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       domain.JobStatusCompleted,
			"completed_at": at,
		}).Error
}

// MarkFailed moves the job to its terminal failed state, preserving the
// provider or store reason for operator visibility.
func (r *JobRepository) MarkFailed(ctx context.Context, id string, reason string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.ExtractionJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        domain.JobStatusFailed,
			"error_message": reason,
			"completed_at":  at,
		}).Error
}
