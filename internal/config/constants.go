package config

import "time"

// Application constants shared across processes.
const (
	// Application info
	AppName = "Macro Data Pulse"

	// Config files (relative to the executable directory)
	SettingsFileName    = "settings.json"
	CredentialsFileName = "credentials.enc"

	// Default directories (relative to the executable)
	DefaultDataDir      = "data"
	DefaultLogsDir      = "logs"
	DefaultWebDir       = "web"
	DefaultWorkbooksDir = "data/workbooks"
	DefaultExportsDir   = "data/exports"

	// Rate limiting
	DefaultRateLimit = 100 // requests per minute
	DefaultBurstSize = 50

	// Network timeouts
	DefaultHTTPTimeout = 30 * time.Second

	// Operation timeouts
	DefaultCollectionTimeout = 30 * time.Minute

	// WebSocket
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024
	WebSocketPingPeriod      = 30 * time.Second
	WebSocketPongWait        = 60 * time.Second

	// Log settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// API endpoints (internal)
	APIBasePath       = "/api"
	HealthEndpoint    = "/api/health"
	MetricsEndpoint   = "/metrics"
	WebSocketEndpoint = "/ws"
)
