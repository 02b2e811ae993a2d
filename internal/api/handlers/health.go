package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/scoutx/analytics-service/internal/similarity"
)

// HealthStatus reports service liveness and dependency checks.
type HealthStatus struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	redis  *redis.Client
	engine *similarity.Engine
	logger *logrus.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(redisClient *redis.Client, engine *similarity.Engine, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		redis:  redisClient,
		engine: engine,
		logger: logger,
	}
}

// GetHealth returns the basic health status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	response := HealthStatus{
		Status:    "ok",
		Service:   "analytics-service",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
		response.Status = "unhealthy"
		response.Checks["redis"] = "failed: " + err.Error()
	} else {
		response.Checks["redis"] = "ok"
	}

	if h.engine.Ready() {
		response.Checks["similarity_index"] = "built"
	} else {
		// lazy: not built yet is healthy, just not warmed up
		response.Checks["similarity_index"] = "pending"
	}

	status := http.StatusOK
	if response.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, response)
}

// GetReady reports readiness. It triggers the lazy build so a fresh
// instance only signals ready once the dataset actually loads.
func (h *HealthHandler) GetReady(c *gin.Context) {
	if _, err := h.engine.Dataset(); err != nil {
		h.logger.WithError(err).Warn("Readiness check failed, dataset unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false, "error": "dataset unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ready": true})
}
