package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/proofcrawl/internal/crawler"
	"github.com/jonesrussell/proofcrawl/internal/domain"
)

// CrawlService controls crawl job execution.
type CrawlService interface {
	StartJob(ctx context.Context, seedURL string, maxDepth, maxPages int) (string, error)
	Cancel(ctx context.Context, jobID string) error
}

// JobStore reads crawl jobs.
type JobStore interface {
	GetByID(ctx context.Context, id string) (*domain.Job, error)
	List(ctx context.Context, status string, limit, offset int) ([]*domain.Job, error)
}

// StartCrawlRequest is the body for POST /api/v1/crawl/start.
type StartCrawlRequest struct {
	URL      string `json:"url" binding:"required"`
	MaxDepth int    `json:"max_depth"`
	MaxPages int    `json:"max_pages"`
}

// CrawlHandler handles crawl-related HTTP requests.
type CrawlHandler struct {
	service CrawlService
	jobs    JobStore
}

// NewCrawlHandler creates a new crawl handler.
func NewCrawlHandler(service CrawlService, jobs JobStore) *CrawlHandler {
	return &CrawlHandler{service: service, jobs: jobs}
}

// StartCrawl handles POST /api/v1/crawl/start
func (h *CrawlHandler) StartCrawl(c *gin.Context) {
	var req StartCrawlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request: "+err.Error())
		return
	}

	jobID, err := h.service.StartJob(c.Request.Context(), req.URL, req.MaxDepth, req.MaxPages)
	if err != nil {
		if errors.Is(err, crawler.ErrInvalidSeedURL) {
			respondBadRequest(c, err.Error())
			return
		}
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": jobID,
		"status": "started",
	})
}

// ListJobs handles GET /api/v1/crawl/jobs
func (h *CrawlHandler) ListJobs(c *gin.Context) {
	status := c.Query("status")
	limit, offset := parseLimitOffset(c)

	jobs, err := h.jobs.List(c.Request.Context(), status, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve jobs")
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// GetJob handles GET /api/v1/crawl/jobs/:id
func (h *CrawlHandler) GetJob(c *gin.Context) {
	job, err := h.jobs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// CancelJob handles DELETE /api/v1/crawl/jobs/:id
func (h *CrawlHandler) CancelJob(c *gin.Context) {
	id := c.Param("id")

	if err := h.service.Cancel(c.Request.Context(), id); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id": id,
		"status": "cancelled",
	})
}
