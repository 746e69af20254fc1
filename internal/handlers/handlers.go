package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"opportunity-sync-go/internal/configstore"
	"opportunity-sync-go/internal/models"
	"opportunity-sync-go/internal/repository"
	"opportunity-sync-go/internal/scheduler"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	db        *gorm.DB
	store     configstore.Store
	scheduler *scheduler.Scheduler
	runs      *repository.Repository
}

// NewHandlers creates new HTTP handlers
func NewHandlers(db *gorm.DB, store configstore.Store, sched *scheduler.Scheduler, runs *repository.Repository) *Handlers {
	return &Handlers{
		db:        db,
		store:     store,
		scheduler: sched,
		runs:      runs,
	}
}

// SetupRoutes sets up all HTTP routes
func (h *Handlers) SetupRoutes(router *gin.Engine) {
	router.GET("/healthz", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.GET("/opportunities", h.GetOpportunities)

		api.GET("/runs", h.GetRuns)
		api.GET("/runs/last", h.GetLastRun)

		api.POST("/scheduler/start", h.StartScheduler)
		api.POST("/scheduler/stop", h.StopScheduler)
		api.POST("/scheduler/run-once", h.RunOnce)
		api.GET("/scheduler/status", h.GetSchedulerStatus)
	}
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := models.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Database:  "ok",
		Metrics:   make(map[string]string),
	}

	if err := h.db.Raw("SELECT 1").Error; err != nil {
		response.Status = "error"
		response.Database = "error"
		logrus.Errorf("Database health check failed: %v", err)
	}

	if h.scheduler.IsRunning() {
		response.Metrics["scheduler"] = "running"
		response.Metrics["next_run"] = h.scheduler.GetNextRun().Format(time.RFC3339)
	} else {
		response.Metrics["scheduler"] = "stopped"
	}

	statusCode := http.StatusOK
	if response.Status == "error" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

// GetOpportunities returns all configured opportunity rows
func (h *Handlers) GetOpportunities(c *gin.Context) {
	rows, err := h.store.ReadAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "store_error",
			Message: "Failed to read opportunities",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	responses := make([]models.OpportunityResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, models.OpportunityResponse{
			ID:             row.ID,
			RowNumber:      row.RowNumber,
			Name:           row.Name,
			SalesforceURL:  row.SalesforceURL,
			CustomerDomain: row.CustomerDomain,
			GmailLabel:     row.GmailLabel,
			DocID:          row.DocID,
			LastSync:       row.LastSync,
			Status:         row.Status,
			ErrorLog:       row.ErrorLog,
		})
	}

	c.JSON(http.StatusOK, responses)
}

// GetRuns returns recent run summaries, newest first
func (h *Handlers) GetRuns(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	runs, err := h.runs.RecentRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to fetch runs",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, runs)
}

// GetLastRun returns the most recent run summary
func (h *Handlers) GetLastRun(c *gin.Context) {
	run, err := h.runs.LastRun()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to fetch last run",
			Code:    http.StatusInternalServerError,
		})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "No runs recorded yet",
			Code:    http.StatusNotFound,
		})
		return
	}

	c.JSON(http.StatusOK, run)
}

// StartScheduler starts the scheduler
func (h *Handlers) StartScheduler(c *gin.Context) {
	if err := h.scheduler.Start(); err != nil {
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "scheduler_error",
			Message: err.Error(),
			Code:    http.StatusConflict,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "started"})
}

// StopScheduler stops the scheduler
func (h *Handlers) StopScheduler(c *gin.Context) {
	if err := h.scheduler.Stop(); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "scheduler_error",
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

// RunOnce triggers a sync run immediately and returns its summary
func (h *Handlers) RunOnce(c *gin.Context) {
	summary, err := h.scheduler.RunOnce(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "sync_error",
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
		})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetSchedulerStatus returns the scheduler state
func (h *Handlers) GetSchedulerStatus(c *gin.Context) {
	status := gin.H{"running": h.scheduler.IsRunning()}
	if h.scheduler.IsRunning() {
		status["next_run"] = h.scheduler.GetNextRun().Format(time.RFC3339)
		if last := h.scheduler.GetLastRun(); !last.IsZero() {
			status["last_run"] = last.Format(time.RFC3339)
		}
	}
	c.JSON(http.StatusOK, status)
}
