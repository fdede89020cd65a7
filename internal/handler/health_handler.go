package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/prize_address/internal/refdata"
	"github.com/GTDGit/prize_address/internal/utils"
)

var startTime = time.Now()

// HealthCheck pings one backing dependency.
type HealthCheck func(ctx context.Context) error

// HealthHandler provides health endpoint.
type HealthHandler struct {
	holder *refdata.Holder
	checks map[string]HealthCheck
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(holder *refdata.Holder) *HealthHandler {
	return &HealthHandler{holder: holder, checks: map[string]HealthCheck{}}
}

// WithCheck registers a dependency check reported under name.
func (h *HealthHandler) WithCheck(name string, check HealthCheck) *HealthHandler {
	h.checks[name] = check
	return h
}

// GetHealth responds with service status and the load state of every dataset.
// The service stays up while datasets are pending or failed or a dependency
// is unreachable; it reports "degraded" instead.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	snap := h.holder.Snapshot()

	status := "healthy"
	if !snap.AllLoaded() {
		status = "degraded"
	}

	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		err := check(ctx)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("dependency", name).Msg("Health check failed")
			deps[name] = "down"
			status = "degraded"
			continue
		}
		deps[name] = "up"
	}

	utils.Success(c, http.StatusOK, "Service is "+status, gin.H{
		"status":       status,
		"version":      "1.0.0",
		"uptime":       int(time.Since(startTime).Seconds()),
		"datasets":     snap.Statuses(),
		"dependencies": deps,
	})
}
