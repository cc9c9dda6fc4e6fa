package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/matiasleandrokruk/shopassist/internal/version"
)

// Health returns a GET /health handler for the named service. It has no side effects.
func Health(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "ok",
			"service":   service,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   version.Version,
		})
	}
}

const readyTimeout = 5 * time.Second

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Ready returns a GET /ready handler that answers 503 while the model provider is unreachable.
func Ready(checker HealthChecker, logger *slog.Logger) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := checker.HealthCheck(ctx); err != nil {
			logger.WarnContext(ctx, "model provider not ready", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
