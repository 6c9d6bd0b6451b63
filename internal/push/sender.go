// Package push delivers serialized notification frames to a user's live
// connection, if one exists. There is no retry, buffering, or queueing
// beyond the connection's own frame buffer: an event generated while the
// user is offline is simply lost from the push channel. Durability comes
// from the persisted notification row and the email channel.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskflow/notify/internal/domain"
	"github.com/taskflow/notify/internal/registry"
)

// ErrConnectionStale is returned when a write to a registered connection
// fails. The sender has already evicted the entry; the caller treats this as
// a non-fatal, logged condition.
var ErrConnectionStale = errors.New("push connection stale")

// Frame is the wire shape of a single push event, serialized as the JSON
// payload of one SSE data frame.
type Frame struct {
	Type    string        `json:"type"`
	Message string        `json:"message,omitempty"`
	Data    *FramePayload `json:"data,omitempty"`
}

// FramePayload carries the notification fields the client renders.
type FramePayload struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ConnectedFrame is the handshake acknowledgment sent as the first frame on
// every new stream.
func ConnectedFrame() Frame {
	return Frame{Type: "connected", Message: "notification stream established"}
}

// NotificationFrame wraps a notification for push delivery.
func NotificationFrame(n *domain.Notification) Frame {
	return Frame{
		Type: "notification",
		Data: &FramePayload{
			ID:      n.ID.String(),
			Title:   n.Title,
			Message: n.Message,
			Type:    string(n.Type),
		},
	}
}

// Sender writes frames to live connections via the registry.
type Sender struct {
	registry *registry.Registry
	logger   *slog.Logger
}

// NewSender creates a push sender backed by the given registry.
func NewSender(reg *registry.Registry, logger *slog.Logger) *Sender {
	if reg == nil {
		panic("registry cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Sender{
		registry: reg,
		logger:   logger.With(slog.String("component", "push_sender")),
	}
}

// Send delivers a notification to userID's live connection.
//
// No registered connection is a silent no-op: the user is offline from
// push's perspective and that is the expected common case, not an error.
// A failed write evicts the entry (the connection is treated as
// disconnected) and returns ErrConnectionStale.
func (s *Sender) Send(ctx context.Context, userID uuid.UUID, n *domain.Notification) error {
	conn, ok := s.registry.Lookup(userID)
	if !ok {
		s.logger.Debug("no live connection, skipping push",
			slog.String("user_id", userID.String()))
		return nil
	}

	frame, err := json.Marshal(NotificationFrame(n))
	if err != nil {
		return fmt.Errorf("failed to marshal push frame: %w", err)
	}

	if err := conn.Enqueue(frame); err != nil {
		s.registry.Unregister(userID, conn)
		s.logger.Debug("evicted stale connection",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", ErrConnectionStale, err)
	}

	return nil
}
