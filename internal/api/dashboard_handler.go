package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/proofcrawl/internal/database"
	"github.com/jonesrussell/proofcrawl/internal/domain"
)

const (
	defaultActivityLimit       = 20
	defaultHighConfidenceLimit = 10
	defaultHighConfidenceFloor = 0.8
)

// DashboardStats carries the headline numbers for the dashboard.
type DashboardStats struct {
	TotalContent        int `json:"total_content"`
	TotalSuggestions    int `json:"total_suggestions"`
	PendingSuggestions  int `json:"pending_suggestions"`
	ApprovedSuggestions int `json:"approved_suggestions"`
	RejectedSuggestions int `json:"rejected_suggestions"`
	AppliedSuggestions  int `json:"applied_suggestions"`
	ActiveCrawlJobs     int `json:"active_crawl_jobs"`
	CompletedCrawlJobs  int `json:"completed_crawl_jobs"`
}

// DashboardHandler serves read-only aggregates for the dashboard.
type DashboardHandler struct {
	jobs        *database.JobRepository
	contents    *database.ContentRepository
	suggestions *database.SuggestionRepository
	audits      *database.AuditRepository
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(
	jobs *database.JobRepository,
	contents *database.ContentRepository,
	suggestions *database.SuggestionRepository,
	audits *database.AuditRepository,
) *DashboardHandler {
	return &DashboardHandler{
		jobs:        jobs,
		contents:    contents,
		suggestions: suggestions,
		audits:      audits,
	}
}

// Stats handles GET /api/v1/dashboard/stats
func (h *DashboardHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	totalContent, err := h.contents.Count(ctx)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	totalSuggestions, err := h.suggestions.Count(ctx)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	suggestionCounts, err := h.suggestions.CountByStatus(ctx)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	jobCounts, err := h.jobs.CountByStatus(ctx)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	c.JSON(http.StatusOK, DashboardStats{
		TotalContent:        totalContent,
		TotalSuggestions:    totalSuggestions,
		PendingSuggestions:  suggestionCounts[string(domain.SuggestionStatusPending)],
		ApprovedSuggestions: suggestionCounts[string(domain.SuggestionStatusApproved)],
		RejectedSuggestions: suggestionCounts[string(domain.SuggestionStatusRejected)],
		AppliedSuggestions:  suggestionCounts[string(domain.SuggestionStatusApplied)],
		ActiveCrawlJobs:     jobCounts[string(domain.JobStatusPending)] + jobCounts[string(domain.JobStatusRunning)],
		CompletedCrawlJobs:  jobCounts[string(domain.JobStatusCompleted)],
	})
}

// ErrorTypes handles GET /api/v1/dashboard/error-types
func (h *DashboardHandler) ErrorTypes(c *gin.Context) {
	stats, err := h.suggestions.StatsByErrorType(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to compute error type stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// RecentActivity handles GET /api/v1/dashboard/recent-activity
func (h *DashboardHandler) RecentActivity(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultActivityLimit)))
	if err != nil || limit <= 0 {
		limit = defaultActivityLimit
	}

	entries, err := h.audits.Recent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve activity")
		return
	}

	c.JSON(http.StatusOK, entries)
}

// ContentStatus handles GET /api/v1/dashboard/content-status
func (h *DashboardHandler) ContentStatus(c *gin.Context) {
	counts, err := h.contents.CountByStatus(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to compute content status breakdown")
		return
	}

	c.JSON(http.StatusOK, counts)
}

// HighConfidence handles GET /api/v1/dashboard/suggestions/high-confidence
func (h *DashboardHandler) HighConfidence(c *gin.Context) {
	minConfidence := defaultHighConfidenceFloor
	if raw := c.Query("min_confidence"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondBadRequest(c, "min_confidence must be a number")
			return
		}
		minConfidence = parsed
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultHighConfidenceLimit)))
	if err != nil || limit <= 0 {
		limit = defaultHighConfidenceLimit
	}

	suggestions, err := h.suggestions.HighConfidencePending(c.Request.Context(), minConfidence, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve suggestions")
		return
	}

	c.JSON(http.StatusOK, suggestions)
}

// Performance handles GET /api/v1/dashboard/performance
func (h *DashboardHandler) Performance(c *gin.Context) {
	stats, err := h.suggestions.Performance(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to compute performance metrics")
		return
	}

	c.JSON(http.StatusOK, stats)
}
