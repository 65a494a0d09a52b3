package service

import (
	"context"
	"time"

	"github.com/guanghao479/golden/internal/crawler"
	"github.com/guanghao479/golden/internal/domain"
	"github.com/guanghao479/golden/internal/logger"
)

// SweepResult summarizes one reconciliation pass over the pending jobs.
type SweepResult struct {
	Processed      int `json:"processed"`
	Completed      int `json:"completed"`
	Failed         int `json:"failed"`
	StillPending   int `json:"pending"`
	InsertedEvents int `json:"inserted_events"`
	InsertedPlaces int `json:"inserted_places"`
}

// Reconciler advances all outstanding asynchronous extraction jobs in a
// batch sweep. It keeps no state between sweeps; each run re-reads the
// pending set from the ledger, so any number of externally scheduled
// triggers can drive it.
type Reconciler struct {
	registry SourceRegistry
	ledger   JobLedger
	records  RecordStore
	gateway  ExtractionGateway
	logger   *logger.Logger
	now      func() time.Time
}

// NewReconciler creates a reconciler.
// Parameters:
//   - registry: source status persistence.
//   - ledger: extraction job persistence.
//   - records: extracted record persistence.
//   - gateway: extraction service boundary.
//   - log: logger instance.
// Returns:
//   - *Reconciler: initialized reconciler.
func NewReconciler(registry SourceRegistry, ledger JobLedger, records RecordStore, gateway ExtractionGateway, log *logger.Logger) *Reconciler {
	return &Reconciler{
		registry: registry,
		ledger:   ledger,
		records:  records,
		gateway:  gateway,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RunSweep polls every pending job once and applies the outcome. Jobs are
// processed sequentially and independently; one job's failure never aborts
// the sweep for the rest. With zero pending jobs the sweep is a no-op.
func (r *Reconciler) RunSweep(ctx context.Context) (*SweepResult, error) {
	jobs, err := r.ledger.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{}

	for i := range jobs {
		job := &jobs[i]
		result.Processed++
		r.reconcileJob(ctx, job, result)
	}

	r.log(ctx).WithFields(logger.Fields{
		"processed":     result.Processed,
		"completed":     result.Completed,
		"failed":        result.Failed,
		"still_pending": result.StillPending,
	}).Info("Reconciliation sweep finished")

	return result, nil
}

func (r *Reconciler) reconcileJob(ctx context.Context, job *domain.ExtractionJob, result *SweepResult) {
	log := r.log(ctx).WithFields(logger.Fields{
		logger.FieldJobID:     job.ID,
		logger.FieldSourceURL: job.SourceURL,
		logger.FieldCrawlType: string(job.CrawlType),
	})

	state, err := r.gateway.PollExtract(ctx, job.ExternalJobID, job.CrawlType)
	if err != nil {
		// A poll failure proves nothing about the job itself; leave it
		// pending and let a later sweep retry.
		log.WithError(err).Warn("Poll failed, leaving job pending")
		result.StillPending++
		return
	}

	switch state.Phase {
	case crawler.JobPhaseProcessing:
		result.StillPending++

	case crawler.JobPhaseCompleted:
		rs := crawler.Normalize(state.Records, job.CrawlType, job.SourceURL, r.now())
		events, places, err := r.records.InsertAll(ctx, rs)
		if err != nil {
			// Extraction succeeded but storage did not: same terminal
			// outcome as a provider-reported failure for this job.
			r.failJob(ctx, job, storeMessage(err), log)
			result.Failed++
			return
		}

		at := r.now()
		if err := r.ledger.MarkCompleted(ctx, job.ID, at); err != nil {
			log.WithError(err).Error("Failed to mark job completed")
		}
		r.markSource(ctx, job, log, func(id string) error {
			return r.registry.MarkCompleted(ctx, id, at)
		})

		result.Completed++
		result.InsertedEvents += events
		result.InsertedPlaces += places
		log.WithField(logger.FieldCount, events+places).Info("Job completed")

	case crawler.JobPhaseFailed:
		r.failJob(ctx, job, state.Reason, log)
		result.Failed++
	}
}

// failJob terminal-izes the job and its source with the given reason.
func (r *Reconciler) failJob(ctx context.Context, job *domain.ExtractionJob, reason string, log *logger.Logger) {
	if err := r.ledger.MarkFailed(ctx, job.ID, reason, r.now()); err != nil {
		log.WithError(err).Error("Failed to mark job failed")
	}
	r.markSource(ctx, job, log, func(id string) error {
		return r.registry.MarkFailed(ctx, id, reason)
	})
	log.Warnf("Job failed: %s", reason)
}

// markSource applies a status write to the job's source entry. The entry may
// have been deleted by an external admin action; the job is still closed out.
func (r *Reconciler) markSource(ctx context.Context, job *domain.ExtractionJob, log *logger.Logger, mark func(id string) error) {
	entry, err := r.registry.GetByURLAndType(ctx, job.SourceURL, job.CrawlType)
	if err != nil {
		log.WithError(err).Error("Failed to load source entry")
		return
	}
	if entry == nil {
		log.Warn("Source entry missing, closing job without source update")
		return
	}
	if err := mark(entry.ID); err != nil {
		log.WithError(err).Error("Failed to update source entry")
	}
}

func (r *Reconciler) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return r.logger
}
