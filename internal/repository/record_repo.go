package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/guanghao479/golden/internal/crawler"
	"github.com/guanghao479/golden/internal/domain"
	"gorm.io/gorm"
)

// ErrNoUpdates is returned when an update call carries an empty change set.
var ErrNoUpdates = errors.New("no updates provided")

// RecordRepository handles extracted event and place rows. The orchestration
// engine only bulk-inserts; the list/update/approve surface exists for the
// admin collaborator that curates records after ingestion.
type RecordRepository struct {
	db *gorm.DB
}

// NewRecordRepository creates a new RecordRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *RecordRepository: repository instance bound to db.
func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// InsertAll bulk-inserts every record in the set inside one transaction.
// A failure on any row rolls back the whole batch; there is no partial
// success.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - rs: normalized records from one extraction.
// Returns:
//   - int: events inserted.
//   - int: places inserted.
//   - error: non-nil if the transaction was rolled back.
func (r *RecordRepository) InsertAll(ctx context.Context, rs crawler.RecordSet) (int, int, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(rs.Events) > 0 {
			for i := range rs.Events {
				if rs.Events[i].ID == "" {
					rs.Events[i].ID = uuid.New().String()
				}
			}
			if err := tx.Create(&rs.Events).Error; err != nil {
				return err
			}
		}
		if len(rs.Places) > 0 {
			for i := range rs.Places {
				if rs.Places[i].ID == "" {
					rs.Places[i].ID = uuid.New().String()
				}
			}
			if err := tx.Create(&rs.Places).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return len(rs.Events), len(rs.Places), nil
}

// ListEvents returns events, optionally filtered by approval state.
func (r *RecordRepository) ListEvents(ctx context.Context, approved *bool) ([]domain.Event, error) {
	var events []domain.Event
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if approved != nil {
		q = q.Where("approved = ?", *approved)
	}
	if err := q.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// ListPlaces returns places, optionally filtered by approval state.
func (r *RecordRepository) ListPlaces(ctx context.Context, approved *bool) ([]domain.Place, error) {
	var places []domain.Place
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if approved != nil {
		q = q.Where("approved = ?", *approved)
	}
	if err := q.Find(&places).Error; err != nil {
		return nil, err
	}
	return places, nil
}

// UpdateEvent applies a partial field update to one event.
func (r *RecordRepository) UpdateEvent(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return ErrNoUpdates
	}
	return r.db.WithContext(ctx).Model(&domain.Event{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// UpdatePlace applies a partial field update to one place.
func (r *RecordRepository) UpdatePlace(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return ErrNoUpdates
	}
	return r.db.WithContext(ctx).Model(&domain.Place{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ApproveEvent marks one event approved.
func (r *RecordRepository) ApproveEvent(ctx context.Context, id string) error {
	return r.UpdateEvent(ctx, id, map[string]interface{}{"approved": true})
}

// ApprovePlace marks one place approved.
func (r *RecordRepository) ApprovePlace(ctx context.Context, id string) error {
	return r.UpdatePlace(ctx, id, map[string]interface{}{"approved": true})
}
