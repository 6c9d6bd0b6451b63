package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskflow/notify/internal/domain"
)

// NotificationStore defines persistence operations for notifications.
//
// Notifications are written once at dispatch time and only ever mutated by
// the read-acknowledgment operations; the core never deletes them.
type NotificationStore interface {
	// Create persists a new notification.
	// Returns ErrInvalidEntity (wrapping the validation cause) if the
	// notification fails domain validation.
	Create(ctx context.Context, notification *domain.Notification) error

	// GetByID retrieves a notification by its unique ID.
	// Returns ErrNotificationNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error)

	// ListByUser returns a user's notifications ordered newest-first,
	// optionally filtered to unread only, capped at limit.
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*domain.Notification, error)

	// MarkRead sets read=true on the notification with the given ID, but
	// only if it belongs to userID. Returns the number of rows affected:
	// zero for a missing or foreign notification, which is not an error.
	MarkRead(ctx context.Context, id, userID uuid.UUID) (int64, error)

	// MarkAllRead sets read=true on every unread notification belonging to
	// userID and returns the number of rows affected.
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)

	// CountUnread returns the number of unread notifications for userID.
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}
