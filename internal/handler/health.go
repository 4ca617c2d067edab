package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/streamhub/accounts/internal/constants"
	"github.com/streamhub/accounts/pkg/mediastore"
	"github.com/streamhub/accounts/pkg/redisclient"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db    *gorm.DB
	redis *redisclient.Client
	media *mediastore.Client
}

func NewHealthHandler(db *gorm.DB, redis *redisclient.Client, media *mediastore.Client) *HealthHandler {
	return &HealthHandler{
		db:    db,
		redis: redis,
		media: media,
	}
}

// Health reports the reachability of each external collaborator
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	checks := gin.H{
		"database": "ok",
		"redis":    "ok",
		"media":    "ok",
	}
	healthy := true

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "unreachable"
		healthy = false
	}
	if err := h.redis.Ping(ctx); err != nil {
		checks["redis"] = "unreachable"
		healthy = false
	}
	if err := h.media.Ping(ctx); err != nil {
		checks["media"] = "unreachable"
		healthy = false
	}

	status := http.StatusOK
	message := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		message = "degraded"
	}

	c.JSON(status, constants.APIResponse{
		Success:    healthy,
		StatusCode: status,
		Message:    message,
		Data: gin.H{
			"version":   constants.AppVersion,
			"timestamp": time.Now().UTC(),
			"checks":    checks,
		},
	})
}
