package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/matiasleandrokruk/shopassist/internal/domain/agent"
	"github.com/matiasleandrokruk/shopassist/internal/domain/chat"
)

const (
	errCodeModelInvocation = "model_invocation_failed"
	replyModelInvocation   = "Sorry, I encountered an error. Please try again."
	maxChatBodyBytes       = 1 << 20
)

// ChatService runs one chat turn.
type ChatService interface {
	ProcessChat(ctx context.Context, req chat.Request, authorization string) (*chat.Response, error)
}

type ChatHandler struct {
	chatService ChatService
	logger      *slog.Logger
}

func NewChatHandler(chatService ChatService, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{chatService: chatService, logger: logger}
}

// Chat handles POST /chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	for _, turn := range req.ConversationHistory {
		if !turn.Role.Valid() {
			writeError(w, http.StatusBadRequest, "conversation_history has an invalid role")
			return
		}
	}

	h.logger.InfoContext(r.Context(), "chat received",
		slog.Int("message_length", len(req.Message)),
		slog.Bool("has_product", req.ProductID != ""),
		slog.Bool("guest", req.Guest()),
		slog.Int("history", len(req.ConversationHistory)))

	resp, err := h.chatService.ProcessChat(r.Context(), req, r.Header.Get("Authorization"))
	if err != nil {
		if errors.Is(err, agent.ErrEmptyMessage) {
			writeError(w, http.StatusBadRequest, "message is required")
			return
		}
		writeJSON(w, http.StatusInternalServerError, chat.ErrorResponse{
			Error: errCodeModelInvocation,
			Reply: replyModelInvocation,
		})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
