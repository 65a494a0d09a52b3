package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guanghao479/golden/internal/domain"
)

// EventStore is the persistence surface the event CRUD endpoints need.
type EventStore interface {
	ListEvents(ctx context.Context, approved *bool) ([]domain.Event, error)
	UpdateEvent(ctx context.Context, id string, updates map[string]interface{}) error
	ApproveEvent(ctx context.Context, id string) error
}

// EventHandler exposes the curation endpoints over extracted events. The
// crawl engine only ever bulk-inserts events; everything here is the
// external admin surface reading and editing what the store already holds.
type EventHandler struct {
	store EventStore
}

// NewEventHandler creates a new event handler.
func NewEventHandler(store EventStore) *EventHandler {
	return &EventHandler{store: store}
}

// UpdateEventRequest carries a partial event edit; nil fields are untouched.
type UpdateEventRequest struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	StartTime    *string   `json:"start_time"`
	EndTime      *string   `json:"end_time"`
	LocationName *string   `json:"location_name"`
	Address      *string   `json:"address"`
	Website      *string   `json:"website"`
	Tags         *[]string `json:"tags"`
	Approved     *bool     `json:"approved"`
}

// ListEvents handles GET /api/v1/events. The approved query parameter
// filters by approval state; absent returns everything.
func (h *EventHandler) ListEvents(c *gin.Context) {
	approved, err := approvedFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	events, err := h.store.ListEvents(c.Request.Context(), approved)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "total": len(events)})
}

// UpdateEvent handles PATCH /api/v1/events/:id.
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	id := c.Param("id")

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.StartTime != nil {
		parsed, err := timestampUpdate(*req.StartTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		updates["start_time"] = parsed
	}
	if req.EndTime != nil {
		parsed, err := timestampUpdate(*req.EndTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		updates["end_time"] = parsed
	}
	if req.LocationName != nil {
		updates["location_name"] = *req.LocationName
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Website != nil {
		updates["website"] = *req.Website
	}
	if req.Tags != nil {
		updates["tags"] = domain.StringArray(*req.Tags)
	}
	if req.Approved != nil {
		updates["approved"] = *req.Approved
	}

	if err := h.store.UpdateEvent(c.Request.Context(), id, updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// ApproveEvent handles POST /api/v1/events/:id/approve.
func (h *EventHandler) ApproveEvent(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.ApproveEvent(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "approved"})
}

// approvedFilter parses the optional approved query parameter.
func approvedFilter(c *gin.Context) (*bool, error) {
	raw, ok := c.GetQuery("approved")
	if !ok {
		return nil, nil
	}
	switch raw {
	case "true":
		v := true
		return &v, nil
	case "false":
		v := false
		return &v, nil
	default:
		return nil, errors.New("approved must be true or false")
	}
}

// timestampUpdate parses an edited timestamp. An empty string clears the
// field; an unparsable value is rejected, unlike ingestion, where bad input
// degrades silently.
func timestampUpdate(value string) (interface{}, error) {
	if value == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	if parsed, err := time.ParseInLocation("2006-01-02 15:04", value, time.UTC); err == nil {
		return parsed, nil
	}
	return nil, errors.New("invalid time format")
}
