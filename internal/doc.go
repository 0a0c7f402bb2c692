// Package internal documents the event planner server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP router, handlers, middleware, and the JSON envelope
// - domain: events, attendees and tickets services over the document store
// - storage: DocumentStore contract with memory and Postgres (jsonb) implementations
// - jobs: the daily upcoming-events check on River or an in-process loop
// - auth, audit, config, metrics, notify, telemetry: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
