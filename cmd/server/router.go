package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/taskflow/notify/internal/api/middleware"
	"github.com/taskflow/notify/internal/api/shared"
)

// newRouter assembles the HTTP routes.
//
// The stream route sits behind the same JWT middleware as the REST routes; a
// browser EventSource passes the token via the Authorization header through a
// fetch-based polyfill or a reverse proxy that injects it.
func newRouter(h *chiHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.TraceMiddleware)

	r.Get("/health", handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.authMW.Authenticate)
			r.Get("/notifications", h.notifications.List)
			r.Get("/notifications/unread/count", h.notifications.UnreadCount)
			r.Post("/notifications/{id}/read", h.notifications.MarkRead)
			r.Post("/notifications/read-all", h.notifications.MarkAllRead)
			r.Get("/notifications/stream", h.stream.Stream)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.serviceMW.Authenticate)
			r.Post("/internal/events", h.events.Ingest)
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
