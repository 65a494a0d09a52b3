package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/guanghao479/golden/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SourceRepository handles crawl source status rows. It is the only writer of
// source_entries besides external admin deletion.
type SourceRepository struct {
	db *gorm.DB
}

// NewSourceRepository creates a new SourceRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *SourceRepository: repository instance bound to db.
func NewSourceRepository(db *gorm.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

// GetByURLAndType retrieves the entry for one (url, crawl_type) pair.
// A missing row returns (nil, nil) rather than an error.
func (r *SourceRepository) GetByURLAndType(ctx context.Context, url string, crawlType domain.CrawlType) (*domain.SourceEntry, error) {
	var entry domain.SourceEntry
	err := r.db.WithContext(ctx).
		First(&entry, "url = ? AND crawl_type = ?", url, crawlType).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpsertPending creates or re-enters the entry for (url, crawl_type) in the
// pending status with its error cleared. Re-submission updates the existing
// row keyed by the unique (url, crawl_type) index; it never duplicates it.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - url: crawl target URL.
//   - crawlType: crawl category.
// Returns:
//   - *domain.SourceEntry: the persisted row after the upsert.
//   - error: non-nil if the upsert fails.
func (r *SourceRepository) UpsertPending(ctx context.Context, url string, crawlType domain.CrawlType) (*domain.SourceEntry, error) {
	entry := domain.SourceEntry{
		ID:          uuid.New().String(),
		URL:         url,
		CrawlType:   crawlType,
		CrawlStatus: domain.CrawlStatusPending,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "url"}, {Name: "crawl_type"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"crawl_status":  domain.CrawlStatusPending,
			"error_message": nil,
			"updated_at":    time.Now().UTC(),
		}),
	}).Create(&entry).Error
	if err != nil {
		return nil, err
	}

	// Re-read so callers see the canonical row (the conflict path keeps the
	// original ID and created_at).
	return r.GetByURLAndType(ctx, url, crawlType)
}

// MarkCrawling transitions the entry to the crawling status.
func (r *SourceRepository) MarkCrawling(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&domain.SourceEntry{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"crawl_status":  domain.CrawlStatusCrawling,
			"error_message": nil,
		}).Error
}

// MarkCompleted transitions the entry to the completed status, records the
// crawl time, and clears any previous error.
func (r *SourceRepository) MarkCompleted(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.SourceEntry{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"crawl_status":    domain.CrawlStatusCompleted,
			"error_message":   nil,
			"last_crawled_at": at,
		}).Error
}

// MarkFailed transitions the entry to the failed status with a readable
// reason. ErrorMessage is set exactly when the status is failed.
func (r *SourceRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return r.db.WithContext(ctx).Model(&domain.SourceEntry{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"crawl_status":  domain.CrawlStatusFailed,
			"error_message": reason,
		}).Error
}

// ListByStatus returns all entries in the given status, newest first.
// An empty status returns every entry.
func (r *SourceRepository) ListByStatus(ctx context.Context, status domain.CrawlStatus) ([]domain.SourceEntry, error) {
	var entries []domain.SourceEntry
	q := r.db.WithContext(ctx).Order("updated_at DESC")
	if status != "" {
		q = q.Where("crawl_status = ?", status)
	}
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
