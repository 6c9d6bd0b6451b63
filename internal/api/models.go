package api

import (
	"time"

	"github.com/taskflow/notify/internal/domain"
)

// NotificationResponse represents the response data for one notification.
type NotificationResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func notificationToResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID.String(),
		UserID:    n.UserID.String(),
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// ListNotificationsResponse wraps a page of notifications.
type ListNotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
}

// UnreadCountResponse reports the number of unread notifications.
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// MarkReadResponse reports how many rows a read-acknowledgment touched.
// Zero is a valid outcome (already read, or not the caller's notification).
type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}

// LoginRequest is the request body for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	Token string `json:"token"`
}

// EventRequest is the body of the internal event-ingest endpoint.
type EventRequest struct {
	Type      string `json:"type"       validate:"required"`
	ProjectID string `json:"project_id" validate:"required,uuid"`
	TaskID    string `json:"task_id"    validate:"omitempty,uuid"`
	CommentID string `json:"comment_id" validate:"omitempty,uuid"`
	Title     string `json:"title"      validate:"required,max=200"`
	Message   string `json:"message"    validate:"required,max=2000"`
}

// EventAcceptedResponse acknowledges an ingested event. Acceptance is not a
// delivery guarantee.
type EventAcceptedResponse struct {
	EventID string `json:"event_id"`
	Status  string `json:"status"`
}
