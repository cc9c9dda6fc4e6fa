package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/matiasleandrokruk/shopassist/internal/domain/audit"
)

// AuditReader lists recorded tool dispatches.
type AuditReader interface {
	ListRecent(ctx context.Context, limit int) ([]audit.DispatchEvent, error)
	CountByOutcome(ctx context.Context) (map[string]int, error)
}

type AuditHandler struct {
	reader AuditReader
	logger *slog.Logger
}

func NewAuditHandler(reader AuditReader, logger *slog.Logger) *AuditHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditHandler{reader: reader, logger: logger}
}

// ListDispatches handles GET /audit/tool-dispatches?limit=N.
func (h *AuditHandler) ListDispatches(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, audit.DefaultListLimit, audit.MaxListLimit)
	events, err := h.reader.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list tool dispatches failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list tool dispatches")
		return
	}
	outcomes, err := h.reader.CountByOutcome(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "count tool dispatches failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list tool dispatches")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": events,
		"meta": map[string]any{"total": len(events), "limit": limit, "outcomes": outcomes},
	})
}
