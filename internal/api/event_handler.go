package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/taskflow/notify/internal/api/shared"
	"github.com/taskflow/notify/internal/domain"
	"github.com/taskflow/notify/internal/events"
)

// EventHandler accepts project events from other TaskFlow services and hands
// them to the notification pipeline.
type EventHandler struct {
	emitter events.Emitter
	logger  *slog.Logger
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(emitter events.Emitter, logger *slog.Logger) *EventHandler {
	if emitter == nil {
		panic("emitter cannot be nil for EventHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for EventHandler")
	}
	return &EventHandler{
		emitter: emitter,
		logger:  logger.With(slog.String("component", "event_handler")),
	}
}

// Ingest handles POST /internal/events requests. The event is validated and
// emitted synchronously into the pipeline; the response acknowledges receipt,
// not delivery.
func (h *EventHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, shared.SanitizeValidationError(err))
		return
	}

	eventType := domain.NotificationType(req.Type)
	if !eventType.Valid() {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Unknown event type")
		return
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid project ID")
		return
	}

	event, err := domain.NewNotificationEvent(eventType, projectID, req.Title, req.Message)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}
	if req.TaskID != "" {
		taskID, err := uuid.Parse(req.TaskID)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
			return
		}
		event.TaskID = &taskID
	}
	if req.CommentID != "" {
		commentID, err := uuid.Parse(req.CommentID)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid comment ID")
			return
		}
		event.CommentID = &commentID
	}

	if err := h.emitter.Emit(r.Context(), event); err != nil {
		// Persistence already happened for any member whose row was created.
		// Channel failures do not surface here.
		h.logger.Warn("event pipeline reported failure",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", string(event.Type)),
			slog.String("error", err.Error()))
	}

	h.logger.Debug("event accepted",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.Type)),
		slog.String("project_id", event.ProjectID.String()))

	shared.RespondWithJSON(w, r, http.StatusAccepted, EventAcceptedResponse{
		EventID: event.ID.String(),
		Status:  "accepted",
	})
}
