// Package http contains the service's own HTTP endpoints
package http

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/fasthttp/router"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// HealthChecker defines interface for components that can report their health
type HealthChecker interface {
	// HealthCheck returns true if component is healthy, false otherwise
	HealthCheck(ctx context.Context) bool
}

// Component is a named health probe
type Component struct {
	Name    string
	Checker HealthChecker
	// Message is reported when the component is unhealthy
	Message string
}

// HealthStatus represents the overall health status
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// ComponentHealth represents health status of a single component
type ComponentHealth struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the JSON response for health check
type HealthResponse struct {
	Status     HealthStatus      `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components []ComponentHealth `json:"components"`
}

// HealthHandler handles HTTP health check requests
type HealthHandler struct {
	components []Component
	timeout    time.Duration
	logger     zerolog.Logger
}

// NewHealthHandler creates a new health check handler
func NewHealthHandler(logger zerolog.Logger, components ...Component) *HealthHandler {
	return &HealthHandler{
		components: components,
		timeout:    5 * time.Second,
		logger:     logger,
	}
}

// RegisterRoutes mounts the handler on /health
func (h *HealthHandler) RegisterRoutes(r *router.Router) {
	r.GET("/health", h.Handle)
}

// Handle reports component health; 503 only when nothing is healthy
func (h *HealthHandler) Handle(ctx *fasthttp.RequestCtx) {
	checkCtx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	components := h.checkComponents(checkCtx)
	status := determineOverallStatus(components)

	statusCode := fasthttp.StatusOK
	if status == HealthStatusUnhealthy {
		statusCode = fasthttp.StatusServiceUnavailable
	}

	logEvent := h.logger.Debug()
	switch status {
	case HealthStatusUnhealthy:
		logEvent = h.logger.Warn()
	case HealthStatusDegraded:
		logEvent = h.logger.Info()
	}
	logEvent.
		Str("status", string(status)).
		Int("status_code", statusCode).
		Interface("components", components).
		Msg("Health check completed")

	body, err := sonic.Marshal(HealthResponse{
		Status:     status,
		Timestamp:  time.Now().UTC(),
		Components: components,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode health check response")
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}

	ctx.SetContentType("application/json")
	ctx.SetStatusCode(statusCode)
	ctx.SetBody(body)
}

func (h *HealthHandler) checkComponents(ctx context.Context) []ComponentHealth {
	out := make([]ComponentHealth, 0, len(h.components))
	for _, c := range h.components {
		healthy := c.Checker.HealthCheck(ctx)
		health := ComponentHealth{Name: c.Name, Healthy: healthy}
		if !healthy {
			health.Message = c.Message
		}
		out = append(out, health)
	}
	return out
}

func determineOverallStatus(components []ComponentHealth) HealthStatus {
	allHealthy := true
	anyHealthy := false

	for _, component := range components {
		if !component.Healthy {
			allHealthy = false
		} else {
			anyHealthy = true
		}
	}

	if allHealthy {
		return HealthStatusHealthy
	} else if anyHealthy {
		return HealthStatusDegraded
	}

	return HealthStatusUnhealthy
}
