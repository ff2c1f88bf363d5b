// Package config provides centralized configuration management for the
// application: server, security, logging, collection, and provider settings,
// executable-relative path resolution, and the user's persisted settings file
// (saved charts, layout, hidden indicators).
//
// # Configuration Sources
//
// Configuration is loaded in three layers, later layers winning field by
// field:
//
//	1. Default values (lowest priority)
//	2. Configuration file (config.yaml)
//	3. Environment variables (highest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern MACRO_* for namespacing:
//
//	MACRO_SERVER_PORT=8080
//	MACRO_LOGGING_LEVEL=debug
//	MACRO_COLLECTION_SOURCES=FRED,BLS
//	MACRO_PROVIDERS_FRED_KEY=...
//
// # Path Management
//
// The Paths type resolves every file the application touches relative to the
// executable directory, never the working directory:
//
//	paths, err := config.GetPaths()
//	workbook := paths.WorkbookPath("FRED")
//	export := paths.ExportPath("comparison.csv")
//
// # User Settings
//
// Saved charts and UI preferences live in settings.json next to the
// executable, read and written with LoadSettings and SaveSettings. A missing
// file is the fresh zero state; legacy files with Korean labels are migrated
// on load.
package config
