// Package handler implements the HTTP API of "railgen serve".
//
// # Endpoints
//
//	GET  /api/scenarios           built-in scripts
//	POST /api/generate/{name}     run a built-in script
//	POST /api/generate            run a YAML topology script sent as the body
//	GET  /api/runs                catalog, ?script= and ?limit= filter it
//	GET  /api/runs/{id}           one run
//	GET  /api/runs/{id}/infra     the RailJSON document of a run
//	POST /api/runs/{id}/import    import a run into the infrastructure service
//
// # Response Format
//
// Success responses return JSON data with appropriate status codes (200, 201).
// Error responses return JSON with {error, details} structure. Invalid
// topologies answer 422, unknown scripts and runs 404, and imports without a
// configured target 503.
//
// # Server-Sent Events
//
// The /events endpoint streams generation, failure and import events from the
// service event bus via the hub package.
package handler
