package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guanghao479/golden/internal/domain"
	"github.com/guanghao479/golden/internal/logger"
	"github.com/guanghao479/golden/internal/service"
)

// SourceLister is the read surface for dashboard source listings.
type SourceLister interface {
	ListByStatus(ctx context.Context, status domain.CrawlStatus) ([]domain.SourceEntry, error)
}

// CrawlHandler exposes crawl submission, reconciliation, and source reads.
type CrawlHandler struct {
	orchestrator service.Orchestrator
	reconciler   *service.Reconciler
	sources      SourceLister
	logger       *logger.Logger
}

// NewCrawlHandler creates a new crawl handler.
// Parameters:
//   - orchestrator: the configured crawl strategy.
//   - reconciler: sweep runner for outstanding jobs.
//   - sources: source entry read access.
//   - log: logger instance.
// Returns:
//   - *CrawlHandler: initialized handler.
func NewCrawlHandler(orchestrator service.Orchestrator, reconciler *service.Reconciler, sources SourceLister, log *logger.Logger) *CrawlHandler {
	return &CrawlHandler{
		orchestrator: orchestrator,
		reconciler:   reconciler,
		sources:      sources,
		logger:       log,
	}
}

// CrawlRequest represents the crawl submission body.
type CrawlRequest struct {
	URL  string `json:"url" binding:"required,url"`
	Type string `json:"type" binding:"required"`
}

// SubmitCrawl handles POST /api/v1/crawl.
func (h *CrawlHandler) SubmitCrawl(c *gin.Context) {
	var req CrawlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid url/type: " + err.Error()})
		return
	}

	crawlType := domain.CrawlType(req.Type)
	if !crawlType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be \"events\" or \"places\""})
		return
	}

	outcome, err := h.orchestrator.SubmitCrawl(c.Request.Context(), req.URL, crawlType)
	if err != nil {
		if errors.Is(err, service.ErrCrawlInFlight) {
			c.JSON(http.StatusConflict, gin.H{"error": "a crawl for this source is already in flight"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	switch {
	case outcome.Queued:
		c.JSON(http.StatusAccepted, gin.H{
			"queued": true,
			"job_id": outcome.JobID,
		})
	case outcome.Status == domain.CrawlStatusFailed:
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   outcome.Message,
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"success":         true,
			"inserted_events": outcome.InsertedEvents,
			"inserted_places": outcome.InsertedPlaces,
		})
	}
}

// Refresh handles POST /api/v1/crawl/refresh: one reconciliation sweep over
// all pending extraction jobs.
func (h *CrawlHandler) Refresh(c *gin.Context) {
	result, err := h.reconciler.RunSweep(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListSources handles GET /api/v1/sources, filterable by crawl_status for
// the dashboard.
func (h *CrawlHandler) ListSources(c *gin.Context) {
	status := domain.CrawlStatus(c.Query("status"))

	entries, err := h.sources.ListByStatus(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sources": entries, "total": len(entries)})
}
