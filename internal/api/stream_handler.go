package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/taskflow/notify/internal/api/shared"
	"github.com/taskflow/notify/internal/push"
	"github.com/taskflow/notify/internal/registry"
)

// heartbeatInterval paces SSE comment frames that keep intermediaries from
// idling out the connection.
const heartbeatInterval = 25 * time.Second

// StreamHandler serves the long-lived SSE notification stream.
type StreamHandler struct {
	registry  *registry.Registry
	heartbeat time.Duration
	logger    *slog.Logger
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(reg *registry.Registry, logger *slog.Logger) *StreamHandler {
	if reg == nil {
		panic("registry cannot be nil for StreamHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for StreamHandler")
	}
	return &StreamHandler{
		registry:  reg,
		heartbeat: heartbeatInterval,
		logger:    logger.With(slog.String("component", "stream_handler")),
	}
}

// Stream handles GET /notifications/stream requests. It registers the
// authenticated user's connection (replacing any previous one), sends the
// handshake frame, then pumps frames until the client disconnects or the
// connection is evicted.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserID(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	conn := h.registry.Register(userID)
	defer h.registry.Unregister(userID, conn)

	log := h.logger.With(slog.String("user_id", userID.String()))
	log.Debug("stream opened", slog.Int("connections", h.registry.Len()))

	handshake, err := json.Marshal(push.ConnectedFrame())
	if err != nil {
		log.Error("failed to marshal handshake frame", slog.String("error", err.Error()))
		return
	}
	if err := writeFrame(w, flusher, handshake); err != nil {
		log.Debug("client went away during handshake", slog.String("error", err.Error()))
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Debug("stream closed by client")
			return

		case <-conn.Done():
			// Evicted: replaced by a newer connection or a failed write.
			log.Debug("stream connection evicted")
			return

		case frame := <-conn.Frames():
			if err := writeFrame(w, flusher, frame); err != nil {
				log.Debug("stream write failed", slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				log.Debug("heartbeat write failed", slog.String("error", err.Error()))
				return
			}
			flusher.Flush()
		}
	}
}

// writeFrame emits one SSE data frame and flushes it to the client.
func writeFrame(w http.ResponseWriter, flusher http.Flusher, payload []byte) error {
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
