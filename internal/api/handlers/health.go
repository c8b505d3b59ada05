package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/plhub/epl-analytics/internal/services"
)

// HealthHandler reports service and dependency health.
type HealthHandler struct {
	db       *gorm.DB
	cache    *services.CacheService
	narrator *services.NarrativeClient
	logger   *logrus.Logger
}

func NewHealthHandler(db *gorm.DB, cache *services.CacheService, narrator *services.NarrativeClient, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		db:       db,
		cache:    cache,
		narrator: narrator,
		logger:   logger,
	}
}

// GetHealth handles GET /health.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	components := gin.H{
		"database":  "healthy",
		"cache":     "healthy",
		"narrative": "healthy",
	}
	status := http.StatusOK

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.Ping() != nil {
		components["database"] = "unhealthy"
		status = http.StatusServiceUnavailable
	}
	if err := h.cache.Ping(c.Request.Context()); err != nil {
		components["cache"] = "unhealthy"
		status = http.StatusServiceUnavailable
	}
	if !h.narrator.Healthy() {
		// Narrative failures degrade to placeholders, they do not take the
		// service down.
		components["narrative"] = "degraded"
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":     overall,
		"components": components,
	})
}

// GetReady handles GET /ready.
func (h *HealthHandler) GetReady(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
