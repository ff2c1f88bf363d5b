// Package http implements the HTTP request handlers for the macro data
// web service. It provides a thin layer between HTTP transport and business
// logic, keeping handlers focused solely on HTTP concerns.
//
// # Architecture Principles
//
// Handlers in this package follow these principles:
//
//	1. Thin handlers - minimal logic, delegate to services
//	2. HTTP-only concerns - request parsing, response formatting
//	3. Error transformation - convert service errors to HTTP responses
//	4. No business logic - all logic belongs in the service layer
//
// # Request Flow
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Workbook Store
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Available Handlers
//
//	- HealthHandler: liveness probe with workbook and socket stats
//	- CatalogHandler: sources, categories and indicator listings
//	- AnalysisHandler: series retrieval, comparison and lag profiles
//	- CollectionHandler: collection trigger and status
//	- SettingsHandler: dashboard settings and saved chart CRUD
//	- ClientLogHandler: browser log sink
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/validation",
//	    "title": "Bad Request",
//	    "status": 400,
//	    "detail": "Request validation failed",
//	    "instance": "/api/sources/FRED/series/UNRATE"
//	}
//
// Numeric series payloads encode missing observations as JSON null because
// NaN has no JSON representation.
//
// # Testing
//
// Handlers are tested with httptest against real services backed by
// temporary workbook directories.
package http
