// Package events decouples the producers of notification events (the HTTP
// ingest endpoint, the Kafka consumer) from the delivery dispatcher. An
// emitter fans each event out to every registered handler in-process.
package events
