// Package api provides the HTTP handlers for the notification service:
// authentication, notification listing and read-acknowledgment, the live
// SSE stream, and the internal event-ingest endpoint.
package api
