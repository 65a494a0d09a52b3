package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/guanghao479/golden/internal/crawler"
	"github.com/guanghao479/golden/internal/domain"
	"github.com/guanghao479/golden/internal/logger"
)

// ErrCrawlInFlight is returned when a submission targets a source that is
// already pending or crawling. The guard is a best-effort read-check against
// the last known row state, not a database lock: two racing submissions can
// both pass it, in which case the second write to the source row wins.
var ErrCrawlInFlight = errors.New("crawl already in flight for this source")

// SourceRegistry is the persistence surface the engine needs for source
// status rows.
type SourceRegistry interface {
	GetByURLAndType(ctx context.Context, url string, crawlType domain.CrawlType) (*domain.SourceEntry, error)
	UpsertPending(ctx context.Context, url string, crawlType domain.CrawlType) (*domain.SourceEntry, error)
	MarkCrawling(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

// JobLedger is the persistence surface for outstanding asynchronous
// extraction jobs.
type JobLedger interface {
	Create(ctx context.Context, job *domain.ExtractionJob) error
	ListPending(ctx context.Context) ([]domain.ExtractionJob, error)
	MarkCompleted(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id string, reason string, at time.Time) error
}

// RecordStore persists normalized extraction output in one all-or-nothing
// batch.
type RecordStore interface {
	InsertAll(ctx context.Context, rs crawler.RecordSet) (events int, places int, err error)
}

// ExtractionGateway is the boundary to the external content-extraction
// service.
type ExtractionGateway interface {
	Configured() bool
	Extract(ctx context.Context, url string, crawlType domain.CrawlType) ([]map[string]interface{}, error)
	StartExtract(ctx context.Context, url string, crawlType domain.CrawlType) (string, error)
	PollExtract(ctx context.Context, externalJobID string, crawlType domain.CrawlType) (*crawler.JobState, error)
}

// SubmitOutcome reports what one submission did. Failures inside the crawl
// lifecycle do not surface as errors; they land here as a terminal failed
// status plus a readable message, so callers always see a definite state.
type SubmitOutcome struct {
	Status         domain.CrawlStatus `json:"status"`
	Queued         bool               `json:"queued"`
	JobID          string             `json:"job_id,omitempty"`
	InsertedEvents int                `json:"inserted_events"`
	InsertedPlaces int                `json:"inserted_places"`
	Message        string             `json:"message,omitempty"`
}

// Orchestrator drives one source through its crawl lifecycle on submission.
// The sync and async strategies are interchangeable behind this interface;
// a deployment constructs exactly one of them.
type Orchestrator interface {
	SubmitCrawl(ctx context.Context, url string, crawlType domain.CrawlType) (*SubmitOutcome, error)
}

// SyncOrchestrator extracts and ingests within the submission call itself.
// The source row goes pending and then straight to a terminal status; the
// intermediate crawling write is skipped on this path.
type SyncOrchestrator struct {
	registry SourceRegistry
	records  RecordStore
	gateway  ExtractionGateway
	logger   *logger.Logger
	now      func() time.Time
}

// NewSyncOrchestrator creates the synchronous strategy.
// Parameters:
//   - registry: source status persistence.
//   - records: extracted record persistence.
//   - gateway: extraction service boundary.
//   - log: logger instance.
// Returns:
//   - *SyncOrchestrator: initialized orchestrator.
func NewSyncOrchestrator(registry SourceRegistry, records RecordStore, gateway ExtractionGateway, log *logger.Logger) *SyncOrchestrator {
	return &SyncOrchestrator{
		registry: registry,
		records:  records,
		gateway:  gateway,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SubmitCrawl runs the full lifecycle for one source: guard, pending upsert,
// extraction, normalization, bulk insert, terminal status.
func (o *SyncOrchestrator) SubmitCrawl(ctx context.Context, url string, crawlType domain.CrawlType) (*SubmitOutcome, error) {
	entry, err := o.registry.GetByURLAndType(ctx, url, crawlType)
	if err != nil {
		return nil, err
	}
	if entry != nil && !entry.CrawlStatus.CanSubmit() {
		return nil, ErrCrawlInFlight
	}

	entry, err = o.registry.UpsertPending(ctx, url, crawlType)
	if err != nil {
		return nil, err
	}

	log := o.log(ctx).WithFields(logger.Fields{
		logger.FieldSourceURL: url,
		logger.FieldCrawlType: string(crawlType),
	})

	if !o.gateway.Configured() {
		return o.fail(ctx, entry.ID, crawler.ErrNotConfigured.Error(), log)
	}

	raw, err := o.gateway.Extract(ctx, url, crawlType)
	if err != nil {
		return o.fail(ctx, entry.ID, failureMessage(err), log)
	}

	rs := crawler.Normalize(raw, crawlType, url, o.now())

	events, places, err := o.records.InsertAll(ctx, rs)
	if err != nil {
		return o.fail(ctx, entry.ID, storeMessage(err), log)
	}

	if err := o.registry.MarkCompleted(ctx, entry.ID, o.now()); err != nil {
		return o.fail(ctx, entry.ID, storeMessage(err), log)
	}

	log.WithFields(logger.Fields{
		logger.FieldCount:  events + places,
		logger.FieldStatus: string(domain.CrawlStatusCompleted),
	}).Info("Crawl completed")

	return &SubmitOutcome{
		Status:         domain.CrawlStatusCompleted,
		InsertedEvents: events,
		InsertedPlaces: places,
	}, nil
}

func (o *SyncOrchestrator) fail(ctx context.Context, id, reason string, log *logger.Logger) (*SubmitOutcome, error) {
	if err := o.registry.MarkFailed(ctx, id, reason); err != nil {
		log.WithError(err).Error("Failed to record crawl failure")
	}
	log.WithField(logger.FieldStatus, string(domain.CrawlStatusFailed)).Warnf("Crawl failed: %s", reason)
	return &SubmitOutcome{
		Status:  domain.CrawlStatusFailed,
		Message: reason,
	}, nil
}

func (o *SyncOrchestrator) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return o.logger
}

// failureMessage renders a gateway error class into the readable text stored
// on the source row. Provider-supplied reasons are preserved verbatim inside
// the message.
func failureMessage(err error) string {
	var transport *crawler.TransportError
	var status *crawler.StatusError
	var provider *crawler.ProviderError

	switch {
	case errors.Is(err, crawler.ErrNotConfigured):
		return err.Error()
	case errors.As(err, &transport):
		return transport.Error()
	case errors.As(err, &status):
		return status.Error()
	case errors.As(err, &provider):
		return provider.Error()
	default:
		return fmt.Sprintf("extraction failed: %v", err)
	}
}

// storeMessage renders a persistence failure. Extraction may have succeeded,
// but no records from the attempt are left committed.
func storeMessage(err error) string {
	return fmt.Sprintf("failed to store crawl results: %v", err)
}
