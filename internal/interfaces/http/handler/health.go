package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storefront/inventory/internal/infrastructure/logger"
)

// HealthCheck checks one dependency
type HealthCheck func(ctx context.Context) error

// HealthHandler reports the status of the service dependencies
type HealthHandler struct {
	checks  map[string]HealthCheck
	timeout time.Duration
	started time.Time
}

// NewHealthHandler creates a HealthHandler. Each check gets timeout to answer.
func NewHealthHandler(checks map[string]HealthCheck, timeout time.Duration) *HealthHandler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthHandler{checks: checks, timeout: timeout, started: time.Now()}
}

// Health godoc
// @ID           health
// @Summary      Service health
// @Tags         system
// @Produce      json
// @Success      200 {object} map[string]any
// @Failure      503 {object} map[string]any
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	components := make(map[string]string, len(names))
	for _, name := range names {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		err := h.checks[name](ctx)
		cancel()
		if err != nil {
			logger.L(c.Request.Context()).Warn("Health check failed",
				zap.String("component", name), zap.Error(err))
			components[name] = "error"
			status = http.StatusServiceUnavailable
			continue
		}
		components[name] = "ok"
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}
	c.JSON(status, gin.H{
		"status":     overall,
		"time":       time.Now().UTC().Format(time.RFC3339),
		"uptime":     time.Since(h.started).Round(time.Second).String(),
		"components": components,
	})
}
