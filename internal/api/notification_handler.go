package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/taskflow/notify/internal/api/shared"
	"github.com/taskflow/notify/internal/store"
)

// NotificationHandler handles notification listing and read-acknowledgment.
type NotificationHandler struct {
	notifications store.NotificationStore
	logger        *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifications store.NotificationStore, logger *slog.Logger) *NotificationHandler {
	if logger == nil {
		panic("logger cannot be nil for NotificationHandler")
	}
	return &NotificationHandler{
		notifications: notifications,
		logger:        logger.With(slog.String("component", "notification_handler")),
	}
}

// List handles GET /notifications requests. Supports ?unread_only=true and
// ?limit=N (default 50), newest first.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserID(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	unreadOnly := r.URL.Query().Get("unread_only") == "true"

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	notifications, err := h.notifications.ListByUser(r.Context(), userID, unreadOnly, limit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Failed to list notifications", err)
		return
	}

	resp := ListNotificationsResponse{
		Notifications: make([]NotificationResponse, 0, len(notifications)),
	}
	for _, n := range notifications {
		resp.Notifications = append(resp.Notifications, notificationToResponse(n))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// UnreadCount handles GET /notifications/unread/count requests.
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserID(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	count, err := h.notifications.CountUnread(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Failed to count notifications", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, UnreadCountResponse{Count: count})
}

// MarkRead handles POST /notifications/{id}/read requests.
//
// The operation is idempotent and ownership-silent: marking an already-read
// notification, a missing one, or another user's notification all succeed
// with updated=0.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserID(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	notificationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	updated, err := h.notifications.MarkRead(r.Context(), notificationID, userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Failed to mark notification read", err)
		return
	}

	h.logger.Debug("marked notification read",
		slog.String("user_id", userID.String()),
		slog.String("notification_id", notificationID.String()),
		slog.Int64("updated", updated))
	shared.RespondWithJSON(w, r, http.StatusOK, MarkReadResponse{Updated: updated})
}

// MarkAllRead handles POST /notifications/read-all requests.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserID(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	updated, err := h.notifications.MarkAllRead(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Failed to mark notifications read", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MarkReadResponse{Updated: updated})
}
