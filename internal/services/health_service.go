package services

import (
	"context"
	"log/slog"
	"time"

	"macrocli/internal/config"
	"macrocli/internal/infrastructure"
)

// SocketStats exposes the websocket hub's counters to the health report.
type SocketStats interface {
	Stats() map[string]interface{}
}

// HealthStatus is the full health report served by the health endpoint.
type HealthStatus struct {
	Status            string                      `json:"status"`
	Version           string                      `json:"version"`
	Time              time.Time                   `json:"time"`
	Uptime            string                      `json:"uptime"`
	CollectionRunning bool                        `json:"collection_running"`
	Workbooks         map[string]bool             `json:"workbooks"`
	WebSocket         map[string]interface{}      `json:"websocket,omitempty"`
	Runtime           *infrastructure.SystemStats `json:"runtime,omitempty"`
}

// HealthService assembles liveness reports. Everything it reads is cheap; a
// health probe never touches the network or parses a workbook.
type HealthService struct {
	version   string
	startedAt time.Time
	paths     *config.Paths
	logger    *slog.Logger

	collection *CollectionService
	socket     SocketStats
	system     *infrastructure.SystemMetricsCollector
}

// NewHealthService creates a health service. The collection service, socket
// stats, and system collector are each optional.
func NewHealthService(version string, paths *config.Paths, collection *CollectionService, socket SocketStats, system *infrastructure.SystemMetricsCollector, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:    version,
		startedAt:  time.Now(),
		paths:      paths,
		logger:     logger.With(slog.String("component", "health_service")),
		collection: collection,
		socket:     socket,
		system:     system,
	}
}

// Check reports the current process health.
func (h *HealthService) Check(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:    "ok",
		Version:   h.version,
		Time:      time.Now().UTC(),
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Workbooks: make(map[string]bool),
	}

	if h.paths != nil {
		for source, path := range h.paths.WorkbookPaths() {
			status.Workbooks[source] = config.FileExists(path)
		}
	}
	if h.collection != nil {
		status.CollectionRunning = h.collection.Running()
	}
	if h.socket != nil {
		status.WebSocket = h.socket.Stats()
	}
	if h.system != nil {
		status.Runtime = h.system.GetCurrentStats(ctx)
	}
	return status
}
