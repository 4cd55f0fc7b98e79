// internal/handler/health_handler.go
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rfid-service/internal/config"
	"rfid-service/internal/model"
	"rfid-service/internal/utils"
)

// StatusProvider reports the reader state
type StatusProvider interface {
	Status() model.ReaderStatus
}

// HealthHandler handles health check requests
type HealthHandler struct {
	reader    StatusProvider
	config    *config.Config
	logger    *utils.ServiceLogger
	startedAt time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(reader StatusProvider, config *config.Config, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		reader:    reader,
		config:    config,
		logger:    utils.NewServiceLogger(logger, "health-handler"),
		startedAt: time.Now(),
	}
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.HealthCheck)
	router.GET("/ready", h.ReadinessCheck)
	router.GET("/live", h.LivenessCheck)
}

// HealthCheck performs general health check
// @Summary Health check
// @Description Get overall service health including the reader connection
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Service is healthy"
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	status := h.reader.Status()

	health := &HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Service:   h.config.App.Name,
		Version:   h.config.App.Version,
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Checks:    make(map[string]CheckResult),
	}

	// A disconnected reader is an expected state, not a failure
	readerCheck := CheckResult{
		Status: string(status.Status),
		Data: map[string]interface{}{
			"port":     status.Port,
			"position": status.Position,
		},
	}
	if status.Status == model.StateError {
		health.Status = "degraded"
		readerCheck.Message = status.LastError
	}
	health.Checks["reader"] = readerCheck

	c.JSON(http.StatusOK, health)
}

// ReadinessCheck for Kubernetes readiness probe
// @Summary Readiness check
// @Description Check if service is ready to accept traffic
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,reader=string,timestamp=string} "Service is ready"
// @Router /ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"reader":    h.reader.Status().Status,
		"timestamp": time.Now(),
	})
}

// LivenessCheck for Kubernetes liveness probe
// @Summary Liveness check
// @Description Check if service is alive
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,timestamp=string} "Service is alive"
// @Router /live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now(),
	})
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]CheckResult `json:"checks"`
}

// CheckResult represents individual check result
type CheckResult struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}
