package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ncaceres/cardbot/internal/domain"
)

// Dispatcher routes a single inbound invocation. Implemented by
// dispatch.Router.
type Dispatcher interface {
	Route(ctx context.Context, inv domain.Invocation) bool
}

// WebhookHandler converts transport updates into invocations and hands them
// to the dispatcher. Each event runs as an independent asynchronous task;
// the webhook acknowledges immediately so the transport does not time out
// and redeliver.
type WebhookHandler struct {
	logger     *slog.Logger
	dispatcher Dispatcher
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(logger *slog.Logger, dispatcher Dispatcher) *WebhookHandler {
	return &WebhookHandler{logger: logger, dispatcher: dispatcher}
}

type updatePayload struct {
	MessageID string `json:"message_id"`
	ChatID    string `json:"chat_id"`
	FromID    string `json:"from_id"`
	Text      string `json:"text"`
}

func (h *WebhookHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload updatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Warn("malformed update payload", "error", err)
		http.Error(w, "malformed payload", http.StatusBadRequest)
		return
	}
	if payload.FromID == "" || payload.MessageID == "" {
		http.Error(w, "missing identity fields", http.StatusBadRequest)
		return
	}

	inv := domain.Invocation{
		UserID:    payload.FromID,
		ChatID:    payload.ChatID,
		MessageID: payload.MessageID,
		Text:      payload.Text,
	}

	// Acknowledge before the handler finishes; the dispatch task owns its
	// own lifetime and must not die with the request context.
	go func() {
		if !h.dispatcher.Route(context.WithoutCancel(r.Context()), inv) {
			h.logger.Debug("update matched no command", "user", inv.UserID, "message", inv.MessageID)
		}
	}()

	w.WriteHeader(http.StatusOK)
}
