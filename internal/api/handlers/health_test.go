package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type checkerFunc func(ctx context.Context) error

func (f checkerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

func TestReady(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "provider reachable", status: http.StatusOK},
		{name: "provider down", err: errors.New("dial tcp: connection refused"), status: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var sawDeadline bool
			checker := checkerFunc(func(ctx context.Context) error {
				_, sawDeadline = ctx.Deadline()
				return tt.err
			})
			rr := httptest.NewRecorder()
			Ready(checker, discardLogger())(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if rr.Code != tt.status {
				t.Errorf("status = %d, want %d", rr.Code, tt.status)
			}
			if !sawDeadline {
				t.Error("expected the health check to run with a deadline")
			}
		})
	}
}
