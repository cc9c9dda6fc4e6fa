package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/matiasleandrokruk/shopassist/internal/api/ctxkeys"
	"github.com/matiasleandrokruk/shopassist/internal/version"
)

// User-facing failure messages.
const (
	MsgAssistantUnavailable = "AI service is currently unavailable. Please try again later."
	MsgForwardFailed        = "Failed to process chat message. Please try again."
	MsgUserMismatch         = "User ID does not match the authenticated user!"
	MsgRateLimited          = "Too many chat requests. Please slow down."
)

const maxRequestBytes = 1 << 20

// Forwarder sends a validated chat request to the assistant service.
type Forwarder interface {
	Forward(ctx context.Context, req *ForwardRequest, authorization string) (json.RawMessage, error)
}

// ChatHandler validates and relays chat turns.
type ChatHandler struct {
	forwarder  Forwarder
	logger     *slog.Logger
	verifyUser bool
}

// NewChatHandler creates a ChatHandler. With verifyUser set, a body user_id
// must equal the token's user id.
func NewChatHandler(forwarder Forwarder, logger *slog.Logger, verifyUser bool) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{forwarder: forwarder, logger: logger, verifyUser: verifyUser}
}

// Chat handles POST /chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, MsgBodyNotJSONObject)
		return
	}

	req, err := ValidateChatRequest(raw)
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			writeError(w, http.StatusBadRequest, vErr.Message)
			return
		}
		writeError(w, http.StatusBadRequest, MsgBodyNotJSONObject)
		return
	}

	if h.verifyUser && req.UserID != "" && req.UserID != ctxkeys.String(r.Context(), ctxkeys.UserID) {
		writeError(w, http.StatusForbidden, MsgUserMismatch)
		return
	}

	h.logger.DebugContext(r.Context(), "forwarding chat request",
		slog.Int("message_length", len(req.Message)),
		slog.Bool("has_product", req.ProductID != ""),
		slog.Bool("guest", req.UserID == ""))

	reply, err := h.forwarder.Forward(r.Context(), req, r.Header.Get("Authorization"))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "assistant communication error", slog.String("error", err.Error()))
		if errors.Is(err, ErrAssistantUnavailable) {
			writeError(w, http.StatusServiceUnavailable, MsgAssistantUnavailable)
			return
		}
		writeError(w, http.StatusInternalServerError, MsgForwardFailed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(reply) //nolint:errcheck
}

// Health handles GET /health.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"service":   "storefront-relay",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   version.Version,
	})
}
