package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wonny/stockspider/internal/api/response"
	"github.com/wonny/stockspider/internal/infra/database/postgres"
)

// statusDisabled component intentionally not configured
const statusDisabled = "disabled"

// HealthHandler handles health check endpoints
type HealthHandler struct {
	dbPool    *postgres.Pool // nil when the fetch log is disabled
	startTime time.Time
	version   string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(dbPool *postgres.Pool, version string) *HealthHandler {
	return &HealthHandler{
		dbPool:    dbPool,
		startTime: time.Now(),
		version:   version,
	}
}

// SimpleHealthResponse represents a simple health check response
type SimpleHealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse represents a readiness check response
type ReadyResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Message   string            `json:"message,omitempty"`
}

// DetailedHealthResponse represents detailed health information
type DetailedHealthResponse struct {
	Status        string                     `json:"status"`
	Version       string                     `json:"version"`
	UptimeSeconds int64                      `json:"uptime_seconds"`
	Timestamp     time.Time                  `json:"timestamp"`
	Components    map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health status of a component
type ComponentHealth struct {
	Status       string                 `json:"status"`
	ResponseTime string                 `json:"response_time,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
	Message      string                 `json:"message,omitempty"`
}

// Health returns simple liveness check
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, SimpleHealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
	})
}

// Ready returns readiness check with dependency checks
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := make(map[string]string)
	status := "ready"
	statusCode := http.StatusOK
	message := ""

	switch {
	case h.dbPool == nil:
		checks["database"] = statusDisabled
	case h.dbPool.Health(c.Request.Context()).Status == "unhealthy":
		checks["database"] = "error"
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
		message = "Database connection failed"
	default:
		checks["database"] = "ok"
	}

	c.JSON(statusCode, ReadyResponse{
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
		Message:   message,
	})
}

// Detailed returns detailed system health information
// GET /api/health/detailed
func (h *HealthHandler) Detailed(c *gin.Context) {
	components := make(map[string]ComponentHealth)
	overallStatus := "healthy"

	if h.dbPool == nil {
		components["database"] = ComponentHealth{
			Status:  statusDisabled,
			Message: "DATABASE_URL not set; fetch log off",
		}
	} else {
		dbHealth := h.dbPool.Health(c.Request.Context())
		components["database"] = ComponentHealth{
			Status:       dbHealth.Status,
			ResponseTime: dbHealth.ResponseTime,
			Details: map[string]interface{}{
				"active_conns": dbHealth.ActiveConns,
				"idle_conns":   dbHealth.IdleConns,
				"total_conns":  dbHealth.TotalConns,
				"max_conns":    dbHealth.MaxConns,
			},
			Message: dbHealth.Error,
		}

		// the spider itself keeps working without its fetch log
		if dbHealth.Status != "healthy" {
			overallStatus = "degraded"
		}
	}

	response.Success(c, DetailedHealthResponse{
		Status:        overallStatus,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Timestamp:     time.Now(),
		Components:    components,
	})
}
