package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/proofcrawl/internal/database"
	"github.com/jonesrussell/proofcrawl/internal/domain"
)

// SuggestionStore reads stored suggestions.
type SuggestionStore interface {
	GetByID(ctx context.Context, id string) (*domain.Suggestion, error)
	List(ctx context.Context, filter database.SuggestionFilter) ([]*domain.Suggestion, error)
	ListByContent(ctx context.Context, contentID string) ([]*domain.Suggestion, error)
}

// ReviewService drives the suggestion lifecycle.
type ReviewService interface {
	Approve(ctx context.Context, id string) error
	Reject(ctx context.Context, id string) error
	Apply(ctx context.Context, id, userID string) (bool, error)
}

// ApplySuggestionRequest is the body for POST /api/v1/suggestions/apply.
type ApplySuggestionRequest struct {
	SuggestionID string `json:"suggestion_id" binding:"required"`
	UserID       string `json:"user_id"`
}

// SuggestionsHandler handles suggestion-related HTTP requests.
type SuggestionsHandler struct {
	suggestions SuggestionStore
	review      ReviewService
}

// NewSuggestionsHandler creates a new suggestions handler.
func NewSuggestionsHandler(suggestions SuggestionStore, review ReviewService) *SuggestionsHandler {
	return &SuggestionsHandler{suggestions: suggestions, review: review}
}

// ListSuggestions handles GET /api/v1/suggestions
func (h *SuggestionsHandler) ListSuggestions(c *gin.Context) {
	limit, offset := parseLimitOffset(c)

	filter := database.SuggestionFilter{
		Status:    c.Query("status"),
		ErrorType: c.Query("error_type"),
		Limit:     limit,
		Offset:    offset,
	}

	if raw := c.Query("min_confidence"); raw != "" {
		minConfidence, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondBadRequest(c, "min_confidence must be a number")
			return
		}
		filter.MinConfidence = minConfidence
	}

	suggestions, err := h.suggestions.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve suggestions")
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// GetSuggestion handles GET /api/v1/suggestions/:id
func (h *SuggestionsHandler) GetSuggestion(c *gin.Context) {
	suggestion, err := h.suggestions.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, suggestion)
}

// ListByContent handles GET /api/v1/suggestions/content/:content_id
func (h *SuggestionsHandler) ListByContent(c *gin.Context) {
	suggestions, err := h.suggestions.ListByContent(c.Request.Context(), c.Param("content_id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve suggestions")
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// ApproveSuggestion handles PUT /api/v1/suggestions/:id/approve
func (h *SuggestionsHandler) ApproveSuggestion(c *gin.Context) {
	if err := h.review.Approve(c.Request.Context(), c.Param("id")); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Suggestion approved"})
}

// RejectSuggestion handles PUT /api/v1/suggestions/:id/reject
func (h *SuggestionsHandler) RejectSuggestion(c *gin.Context) {
	if err := h.review.Reject(c.Request.Context(), c.Param("id")); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Suggestion rejected"})
}

// ApplySuggestion handles POST /api/v1/suggestions/apply
func (h *SuggestionsHandler) ApplySuggestion(c *gin.Context) {
	var req ApplySuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request: "+err.Error())
		return
	}

	applied, err := h.review.Apply(c.Request.Context(), req.SuggestionID, req.UserID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if !applied {
		respondError(c, http.StatusConflict, "Failed to apply suggestion")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Suggestion applied successfully"})
}
