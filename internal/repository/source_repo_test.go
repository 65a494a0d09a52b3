package repository

import (
	"context"
	"testing"
	"time"

	"github.com/guanghao479/golden/internal/crawler"
	"github.com/guanghao479/golden/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&domain.SourceEntry{},
		&domain.ExtractionJob{},
		&domain.Event{},
		&domain.Place{},
	))
	return db
}

func TestSourceRepositoryUpsertPending(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSourceRepository(db)
	ctx := context.Background()

	first, err := repo.UpsertPending(ctx, "https://x.com/cal", domain.CrawlTypeEvents)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, domain.CrawlStatusPending, first.CrawlStatus)

	// Terminal-ize, then re-submit: same row re-enters pending with the
	// error cleared instead of a duplicate being created.
	require.NoError(t, repo.MarkFailed(ctx, first.ID, "boom"))

	second, err := repo.UpsertPending(ctx, "https://x.com/cal", domain.CrawlTypeEvents)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, domain.CrawlStatusPending, second.CrawlStatus)
	assert.Nil(t, second.ErrorMessage)

	var count int64
	db.Model(&domain.SourceEntry{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestSourceRepositorySeparateRowsPerType(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSourceRepository(db)
	ctx := context.Background()

	_, err := repo.UpsertPending(ctx, "https://x.com", domain.CrawlTypeEvents)
	require.NoError(t, err)
	_, err = repo.UpsertPending(ctx, "https://x.com", domain.CrawlTypePlaces)
	require.NoError(t, err)

	var count int64
	db.Model(&domain.SourceEntry{}).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestSourceRepositoryStatusMarks(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSourceRepository(db)
	ctx := context.Background()

	entry, err := repo.UpsertPending(ctx, "https://x.com", domain.CrawlTypeEvents)
	require.NoError(t, err)

	require.NoError(t, repo.MarkCrawling(ctx, entry.ID))
	got, err := repo.GetByURLAndType(ctx, "https://x.com", domain.CrawlTypeEvents)
	require.NoError(t, err)
	assert.Equal(t, domain.CrawlStatusCrawling, got.CrawlStatus)

	at := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.MarkCompleted(ctx, entry.ID, at))
	got, err = repo.GetByURLAndType(ctx, "https://x.com", domain.CrawlTypeEvents)
	require.NoError(t, err)
	assert.Equal(t, domain.CrawlStatusCompleted, got.CrawlStatus)
	assert.Nil(t, got.ErrorMessage)
	require.NotNil(t, got.LastCrawledAt)

	require.NoError(t, repo.MarkFailed(ctx, entry.ID, "provider down"))
	got, err = repo.GetByURLAndType(ctx, "https://x.com", domain.CrawlTypeEvents)
	require.NoError(t, err)
	assert.Equal(t, domain.CrawlStatusFailed, got.CrawlStatus)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "provider down", *got.ErrorMessage)
}

func TestSourceRepositoryGetMissingReturnsNil(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSourceRepository(db)

	got, err := repo.GetByURLAndType(context.Background(), "https://nowhere.com", domain.CrawlTypeEvents)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSourceRepositoryListByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSourceRepository(db)
	ctx := context.Background()

	a, err := repo.UpsertPending(ctx, "https://a.com", domain.CrawlTypeEvents)
	require.NoError(t, err)
	_, err = repo.UpsertPending(ctx, "https://b.com", domain.CrawlTypeEvents)
	require.NoError(t, err)
	require.NoError(t, repo.MarkFailed(ctx, a.ID, "x"))

	failed, err := repo.ListByStatus(ctx, domain.CrawlStatusFailed)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "https://a.com", failed[0].URL)

	all, err := repo.ListByStatus(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestJobRepositoryPendingScan(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	first := &domain.ExtractionJob{ExternalJobID: "fc-1", SourceURL: "https://a.com", CrawlType: domain.CrawlTypeEvents}
	second := &domain.ExtractionJob{ExternalJobID: "fc-2", SourceURL: "https://b.com", CrawlType: domain.CrawlTypePlaces}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	at := time.Now().UTC()
	require.NoError(t, repo.MarkCompleted(ctx, first.ID, at))

	pending, err := repo.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "fc-2", pending[0].ExternalJobID)

	require.NoError(t, repo.MarkFailed(ctx, second.ID, "expired", at))
	pending, err = repo.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRecordRepositoryInsertAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()

	events, places, err := repo.InsertAll(ctx, crawler.RecordSet{
		Events: []domain.Event{
			{SourceURL: "https://x.com", Title: "A", Tags: domain.StringArray{"t"}},
			{SourceURL: "https://x.com", Title: "B", Tags: domain.StringArray{}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, events)
	assert.Zero(t, places)

	stored, err := repo.ListEvents(ctx, nil)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for _, ev := range stored {
		assert.False(t, ev.Approved)
	}
}

// TestRecordRepositoryInsertAllRollsBack verifies the batch is
// all-or-nothing: one bad row leaves zero rows committed.
func TestRecordRepositoryInsertAllRollsBack(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()

	_, _, err := repo.InsertAll(ctx, crawler.RecordSet{
		Events: []domain.Event{
			{ID: "dup", SourceURL: "https://x.com", Title: "A"},
			{ID: "dup", SourceURL: "https://x.com", Title: "B"},
		},
	})
	require.Error(t, err)

	var count int64
	db.Model(&domain.Event{}).Count(&count)
	assert.Zero(t, count)
}

func TestRecordRepositoryApprove(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()

	_, _, err := repo.InsertAll(ctx, crawler.RecordSet{
		Places: []domain.Place{{ID: "p1", SourceURL: "https://x.com", Name: "Museum"}},
	})
	require.NoError(t, err)

	require.NoError(t, repo.ApprovePlace(ctx, "p1"))

	approved := true
	places, err := repo.ListPlaces(ctx, &approved)
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "Museum", places[0].Name)
}
