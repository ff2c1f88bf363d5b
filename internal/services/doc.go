// Package services implements the business logic layer between the HTTP
// handlers and the data layer. Handlers stay thin: they decode requests,
// call a service, and render whatever the service returns.
//
// # Architecture
//
// Services follow these principles:
//
//	1. Context propagation for cancellation and tracing
//	2. Dependency injection through constructors
//	3. APIError return values that handlers render unchanged
//	4. Structured logging and OTel metrics as cross-cutting concerns
//
// # Available Services
//
// The package provides these services:
//
//	- CollectionService: fetches indicators from the configured providers
//	  and rewrites the per-source workbooks, broadcasting progress over
//	  the websocket hub
//	- AnalysisService: loads workbooks, applies transforms, and computes
//	  correlation and lag statistics across series
//	- SettingsService: persists saved charts, layout, and hidden
//	  indicators on disk
//	- HealthService: assembles the liveness report
//
// # Concurrency
//
// CollectionService allows one run at a time; a second Run while one is
// active returns ErrCollectionRunning. Within a run, sources are collected
// concurrently with a bounded errgroup, and a failure in one source never
// cancels the others. AnalysisService caches parsed workbooks keyed by
// file modification time, so a finished collection is picked up on the
// next read without explicit invalidation.
package services
