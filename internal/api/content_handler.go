package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/proofcrawl/internal/analyzer"
	"github.com/jonesrussell/proofcrawl/internal/domain"
	"github.com/jonesrussell/proofcrawl/internal/search"
)

// ContentStore reads and deletes stored content.
type ContentStore interface {
	GetByID(ctx context.Context, id string) (*domain.Content, error)
	List(ctx context.Context, status string, limit, offset int) ([]*domain.Content, error)
	Delete(ctx context.Context, id string) error
}

// AnalyzerService runs proofreading analysis over stored content.
type AnalyzerService interface {
	AnalyzeIfNeeded(ctx context.Context, contentID string, force bool) (*analyzer.Result, error)
}

// AnalyzeContentRequest is the body for POST /api/v1/content/analyze.
type AnalyzeContentRequest struct {
	ContentID string `json:"content_id" binding:"required"`
}

// ContentHandler handles content-related HTTP requests.
type ContentHandler struct {
	contents ContentStore
	analyzer AnalyzerService
	index    search.Index
}

// NewContentHandler creates a new content handler.
func NewContentHandler(contents ContentStore, analyzerSvc AnalyzerService, index search.Index) *ContentHandler {
	return &ContentHandler{
		contents: contents,
		analyzer: analyzerSvc,
		index:    index,
	}
}

// ListContent handles GET /api/v1/content
func (h *ContentHandler) ListContent(c *gin.Context) {
	status := c.Query("status")
	limit, offset := parseLimitOffset(c)

	contents, err := h.contents.List(c.Request.Context(), status, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve content")
		return
	}

	c.JSON(http.StatusOK, gin.H{"content": contents})
}

// GetContent handles GET /api/v1/content/:id
func (h *ContentHandler) GetContent(c *gin.Context) {
	content, err := h.contents.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, content)
}

// DeleteContent handles DELETE /api/v1/content/:id
func (h *ContentHandler) DeleteContent(c *gin.Context) {
	if err := h.contents.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Content deleted successfully"})
}

// SearchContent handles GET /api/v1/content/search
func (h *ContentHandler) SearchContent(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		respondBadRequest(c, "query parameter is required")
		return
	}

	limit, _ := parseLimitOffset(c)

	hits, err := h.index.Search(c.Request.Context(), query, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Search failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"results": hits,
	})
}

// AnalyzeContent handles POST /api/v1/content/analyze
func (h *ContentHandler) AnalyzeContent(c *gin.Context) {
	var req AnalyzeContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request: "+err.Error())
		return
	}

	force := c.Query("force") == "true"

	result, err := h.analyzer.AnalyzeIfNeeded(c.Request.Context(), req.ContentID, force)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	if result.AlreadyAnalyzed {
		c.JSON(http.StatusOK, gin.H{
			"message":    "Content already analyzed",
			"content_id": result.ContentID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"content_id":          result.ContentID,
		"backend":             result.Backend,
		"suggestions_created": len(result.Suggestions),
	})
}
