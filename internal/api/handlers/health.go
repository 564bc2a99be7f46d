package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/dvloznov/finance-dashboard/internal/api/middleware"
	"github.com/dvloznov/finance-dashboard/internal/apiclient"
	"github.com/dvloznov/finance-dashboard/internal/logger"
)

// HealthChecker probes the analytics backend.
type HealthChecker interface {
	Health(ctx context.Context) (apiclient.HealthStatus, error)
}

// HealthHandler reports the dashboard's own health and the backend's.
type HealthHandler struct {
	backend HealthChecker
	timeout time.Duration
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(backend HealthChecker) *HealthHandler {
	return &HealthHandler{
		backend: backend,
		timeout: 5 * time.Second,
	}
}

// Register adds the health route to mux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", allow(http.MethodGet, h.Health))
}

// Health handles GET /health
// It answers 503 when the backend is unreachable.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	now := time.Now().Format(time.RFC3339)
	backend, err := h.backend.Health(ctx)
	if err != nil {
		reqLog := logger.FromContext(r.Context())
		reqLog.Warn().Err(err).Msg("Backend health check failed")
		middleware.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":        "degraded",
			"time":          now,
			"backend_error": err.Error(),
		})
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"time":    now,
		"backend": backend,
	})
}
