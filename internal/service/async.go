package service

import (
	"context"
	"time"

	"github.com/guanghao479/golden/internal/crawler"
	"github.com/guanghao479/golden/internal/domain"
	"github.com/guanghao479/golden/internal/logger"
)

// AsyncOrchestrator enqueues an extraction job and returns immediately; the
// reconciler sweep later drives the job and its source to a terminal status.
//
// Known gap carried over from the system's design: the crawling status write
// and the job row are persisted after the gateway accepts the submission. A
// crash between gateway accept and those writes leaves the source stuck in
// pending/crawling with no automatic recovery.
type AsyncOrchestrator struct {
	registry SourceRegistry
	ledger   JobLedger
	gateway  ExtractionGateway
	logger   *logger.Logger
	now      func() time.Time
}

// NewAsyncOrchestrator creates the asynchronous strategy.
// Parameters:
//   - registry: source status persistence.
//   - ledger: extraction job persistence.
//   - gateway: extraction service boundary.
//   - log: logger instance.
// Returns:
//   - *AsyncOrchestrator: initialized orchestrator.
func NewAsyncOrchestrator(registry SourceRegistry, ledger JobLedger, gateway ExtractionGateway, log *logger.Logger) *AsyncOrchestrator {
	return &AsyncOrchestrator{
		registry: registry,
		ledger:   ledger,
		gateway:  gateway,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SubmitCrawl guards the source, submits to the gateway, and records the
// accepted job handle. No ingestion happens here.
func (o *AsyncOrchestrator) SubmitCrawl(ctx context.Context, url string, crawlType domain.CrawlType) (*SubmitOutcome, error) {
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

	externalJobID, err := o.gateway.StartExtract(ctx, url, crawlType)
	if err != nil {
		return o.fail(ctx, entry.ID, failureMessage(err), log)
	}

	if err := o.registry.MarkCrawling(ctx, entry.ID); err != nil {
		return o.fail(ctx, entry.ID, storeMessage(err), log)
	}

	job := &domain.ExtractionJob{
		ExternalJobID: externalJobID,
		SourceURL:     url,
		CrawlType:     crawlType,
		Status:        domain.JobStatusPending,
	}
	if err := o.ledger.Create(ctx, job); err != nil {
		return o.fail(ctx, entry.ID, storeMessage(err), log)
	}

	log.WithFields(logger.Fields{
		logger.FieldJobID:  job.ID,
		logger.FieldStatus: string(domain.CrawlStatusCrawling),
	}).Info("Crawl queued")

	return &SubmitOutcome{
		Status: domain.CrawlStatusCrawling,
		Queued: true,
		JobID:  job.ID,
	}, nil
}

func (o *AsyncOrchestrator) fail(ctx context.Context, id, reason string, log *logger.Logger) (*SubmitOutcome, error) {
	if err := o.registry.MarkFailed(ctx, id, reason); err != nil {
		log.WithError(err).Error("Failed to record crawl failure")
	}
	log.WithField(logger.FieldStatus, string(domain.CrawlStatusFailed)).Warnf("Crawl failed: %s", reason)
	return &SubmitOutcome{
		Status:  domain.CrawlStatusFailed,
		Message: reason,
	}, nil
}

func (o *AsyncOrchestrator) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return o.logger
}
