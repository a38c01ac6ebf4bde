// Package api implements the HTTP API for the proofreading service.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/proofcrawl/internal/config"
	"github.com/jonesrussell/proofcrawl/internal/logger"
)

const (
	readHeaderTimeout  = 10 * time.Second
	healthCheckTimeout = 2 * time.Second

	serviceVersion = "1.0.0"
)

// Pinger reports whether the database answers.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handlers bundles the route handlers wired into the router.
type Handlers struct {
	Crawl       *CrawlHandler
	Content     *ContentHandler
	Suggestions *SuggestionsHandler
	Dashboard   *DashboardHandler
	DB          Pinger
}

// SetupRouter creates and configures the Gin router with all routes.
func SetupRouter(log logger.Interface, h *Handlers) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "proofcrawl API",
			"version": serviceVersion,
		})
	})
	router.GET("/health", healthHandler(h.DB))

	v1 := router.Group("/api/v1")

	crawl := v1.Group("/crawl")
	crawl.POST("/start", h.Crawl.StartCrawl)
	crawl.GET("/jobs", h.Crawl.ListJobs)
	crawl.GET("/jobs/:id", h.Crawl.GetJob)
	crawl.DELETE("/jobs/:id", h.Crawl.CancelJob)

	content := v1.Group("/content")
	content.GET("", h.Content.ListContent)
	content.GET("/search", h.Content.SearchContent) // More specific route before :id
	content.POST("/analyze", h.Content.AnalyzeContent)
	content.GET("/:id", h.Content.GetContent)
	content.DELETE("/:id", h.Content.DeleteContent)

	suggestions := v1.Group("/suggestions")
	suggestions.GET("", h.Suggestions.ListSuggestions)
	suggestions.POST("/apply", h.Suggestions.ApplySuggestion)
	suggestions.GET("/content/:content_id", h.Suggestions.ListByContent) // More specific route before :id
	suggestions.GET("/:id", h.Suggestions.GetSuggestion)
	suggestions.PUT("/:id/approve", h.Suggestions.ApproveSuggestion)
	suggestions.PUT("/:id/reject", h.Suggestions.RejectSuggestion)

	dashboard := v1.Group("/dashboard")
	dashboard.GET("/stats", h.Dashboard.Stats)
	dashboard.GET("/error-types", h.Dashboard.ErrorTypes)
	dashboard.GET("/recent-activity", h.Dashboard.RecentActivity)
	dashboard.GET("/content-status", h.Dashboard.ContentStatus)
	dashboard.GET("/suggestions/high-confidence", h.Dashboard.HighConfidence)
	dashboard.GET("/performance", h.Dashboard.Performance)

	return router
}

// healthHandler reports service health, including database reachability.
func healthHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}

// loggingMiddleware creates a middleware that logs HTTP requests.
func loggingMiddleware(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		log.Info("HTTP request",
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.String("query", query),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("latency", time.Since(start)),
		)
	}
}

// corsMiddleware adds CORS headers for the dashboard frontend.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers",
			"Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// StartHTTPServer builds the HTTP server around the configured router.
func StartHTTPServer(log logger.Interface, h *Handlers, cfg config.ServerConfig) *http.Server {
	router := SetupRouter(log, h)

	return &http.Server{
		Addr:              cfg.Address,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
