package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies the domain action that produced a notification.
type NotificationType string

// Known notification types.
const (
	TypeTaskCreated    NotificationType = "task_created"
	TypeTaskAssigned   NotificationType = "task_assigned"
	TypeTaskCompleted  NotificationType = "task_completed"
	TypeCommentAdded   NotificationType = "comment_added"
	TypeMemberAdded    NotificationType = "member_added"
	TypeProjectUpdated NotificationType = "project_updated"
)

// Valid reports whether t is one of the known notification types.
func (t NotificationType) Valid() bool {
	switch t {
	case TypeTaskCreated, TypeTaskAssigned, TypeTaskCompleted,
		TypeCommentAdded, TypeMemberAdded, TypeProjectUpdated:
		return true
	}
	return false
}

// Notification is the durable record of a single delivery to a single user.
// A notification is immutable after creation except for the Read flag, which
// only ever moves from false to true.
type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	Message   string
	Type      NotificationType
	Read      bool
	CreatedAt time.Time
}

// NewNotification creates an unread notification for the given recipient.
// Returns a validation error if any required field is missing or invalid.
func NewNotification(
	userID uuid.UUID,
	title, message string,
	notificationType NotificationType,
) (*Notification, error) {
	n := &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      notificationType,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}

	if err := n.Validate(); err != nil {
		return nil, err
	}

	return n, nil
}

// Validate checks that the notification satisfies all entity invariants.
func (n *Notification) Validate() error {
	if n.UserID == uuid.Nil {
		return ErrNilUserID
	}
	if n.Title == "" {
		return ErrEmptyTitle
	}
	if n.Message == "" {
		return ErrEmptyMessage
	}
	if !n.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}
