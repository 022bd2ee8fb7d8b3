package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// streamPollInterval is how often a stream checks its session for new rounds.
var streamPollInterval = 500 * time.Millisecond

// handleSessionStream streams session rounds using Server-Sent Events.
func (h *Handler) handleSessionStream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	slog.Debug("New session stream connection", "id", id, "remote_addr", r.RemoteAddr)

	// Set headers for SSE
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		slog.Error("Streaming unsupported: ResponseWriter does not implement http.Flusher")
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	state, err := h.engine.GetSession(id)
	if err != nil {
		slog.Warn("Session not found for stream", "id", id)
		h.sendSSEError(w, flusher, "Session not found")
		return
	}

	// Send existing rounds immediately
	for _, round := range state.Rounds {
		h.sendSSEEvent(w, flusher, "round_complete", round)
	}

	if state.Terminal {
		h.sendSSEEvent(w, flusher, "session_complete", state)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), runTimeout)
	defer cancel()

	ticker := time.NewTicker(streamPollInterval)
	defer ticker.Stop()

	sent := len(state.Rounds)

	for {
		select {
		case <-ctx.Done():
			slog.Debug("Stream context done", "id", id)
			return
		case <-ticker.C:
			updated, err := h.engine.GetSession(id)
			if err != nil {
				// Deleted while streaming
				h.sendSSEError(w, flusher, "Session not found")
				return
			}

			for i := sent; i < len(updated.Rounds); i++ {
				h.sendSSEEvent(w, flusher, "round_complete", updated.Rounds[i])
			}
			sent = len(updated.Rounds)

			if updated.Terminal {
				slog.Debug("Session completed during stream", "id", id)
				h.sendSSEEvent(w, flusher, "session_complete", updated)
				return
			}
		}
	}
}

// sendSSEEvent sends a server-sent event.
func (h *Handler) sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		slog.Error("Failed to marshal SSE data", "error", err)
		return
	}

	if _, err := fmt.Fprintf(w, "event: %s\n", eventType); err != nil {
		slog.Error("Failed to write SSE event", "error", err)
		return
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", jsonData); err != nil {
		slog.Error("Failed to write SSE data", "error", err)
		return
	}
	flusher.Flush()
}

// sendSSEError sends an error event.
func (h *Handler) sendSSEError(w http.ResponseWriter, flusher http.Flusher, message string) {
	h.sendSSEEvent(w, flusher, "error", map[string]string{"message": message})
}
