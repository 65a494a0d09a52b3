package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guanghao479/golden/internal/domain"
)

// PlaceStore is the persistence surface the place CRUD endpoints need.
type PlaceStore interface {
	ListPlaces(ctx context.Context, approved *bool) ([]domain.Place, error)
	UpdatePlace(ctx context.Context, id string, updates map[string]interface{}) error
	ApprovePlace(ctx context.Context, id string) error
}

// PlaceHandler exposes the curation endpoints over extracted places.
type PlaceHandler struct {
	store PlaceStore
}

// NewPlaceHandler creates a new place handler.
func NewPlaceHandler(store PlaceStore) *PlaceHandler {
	return &PlaceHandler{store: store}
}

// UpdatePlaceRequest carries a partial place edit; nil fields are untouched.
type UpdatePlaceRequest struct {
	Name           *string   `json:"name"`
	Description    *string   `json:"description"`
	Category       *string   `json:"category"`
	Address        *string   `json:"address"`
	Website        *string   `json:"website"`
	FamilyFriendly *bool     `json:"family_friendly"`
	Tags           *[]string `json:"tags"`
	Approved       *bool     `json:"approved"`
}

// ListPlaces handles GET /api/v1/places.
func (h *PlaceHandler) ListPlaces(c *gin.Context) {
	approved, err := approvedFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	places, err := h.store.ListPlaces(c.Request.Context(), approved)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"places": places, "total": len(places)})
}

// UpdatePlace handles PATCH /api/v1/places/:id.
func (h *PlaceHandler) UpdatePlace(c *gin.Context) {
	id := c.Param("id")

	var req UpdatePlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Website != nil {
		updates["website"] = *req.Website
	}
	if req.FamilyFriendly != nil {
		updates["family_friendly"] = *req.FamilyFriendly
	}
	if req.Tags != nil {
		updates["tags"] = domain.StringArray(*req.Tags)
	}
	if req.Approved != nil {
		updates["approved"] = *req.Approved
	}

	if err := h.store.UpdatePlace(c.Request.Context(), id, updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// ApprovePlace handles POST /api/v1/places/:id/approve.
func (h *PlaceHandler) ApprovePlace(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.ApprovePlace(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "approved"})
}
