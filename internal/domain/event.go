package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationEvent is a notification-worthy domain action (task created,
// comment added, ...) scoped to a project. One event fans out to zero or more
// notifications, one per interested project member.
type NotificationEvent struct {
	ID        uuid.UUID        `json:"id"`
	Type      NotificationType `json:"type"`
	ProjectID uuid.UUID        `json:"project_id"`
	TaskID    *uuid.UUID       `json:"task_id,omitempty"`
	CommentID *uuid.UUID       `json:"comment_id,omitempty"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewNotificationEvent creates an event for the given project and assigns it
// a fresh identity. Returns a validation error for missing required fields.
func NewNotificationEvent(
	eventType NotificationType,
	projectID uuid.UUID,
	title, message string,
) (*NotificationEvent, error) {
	e := &NotificationEvent{
		ID:        uuid.New(),
		Type:      eventType,
		ProjectID: projectID,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}

	return e, nil
}

// Validate checks that the event carries everything the dispatcher needs.
func (e *NotificationEvent) Validate() error {
	if e.ProjectID == uuid.Nil {
		return ErrNilProjectID
	}
	if e.Title == "" {
		return ErrEmptyTitle
	}
	if e.Message == "" {
		return ErrEmptyMessage
	}
	if !e.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}
