// Package events defines the WebSocket event contracts published while a
// collection run is in flight. Subscribers receive one JSON envelope per
// event with a typed payload.
package events

import (
	"time"

	"macrocli/pkg/contracts/domain"
)

// MessageType defines the type of WebSocket message.
type MessageType string

const (
	MessageTypeCollectionStart     MessageType = "collection:start"
	MessageTypeCollectionSource    MessageType = "collection:source"
	MessageTypeCollectionIndicator MessageType = "collection:indicator"
	MessageTypeCollectionComplete  MessageType = "collection:complete"
	MessageTypeCollectionError     MessageType = "collection:error"

	MessageTypeConnect    MessageType = "connect"
	MessageTypeDisconnect MessageType = "disconnect"
)

// Envelope is the wire frame every event is wrapped in.
type Envelope struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// CollectionStart announces a new run and the sources it will visit.
type CollectionStart struct {
	RunID   string   `json:"run_id"`
	Sources []string `json:"sources"`
}

// CollectionSource marks one source's collection phase starting or finishing.
type CollectionSource struct {
	RunID   string `json:"run_id"`
	Source  string `json:"source"`
	Status  string `json:"status"` // running|completed|failed
	Message string `json:"message,omitempty"`
}

// CollectionIndicator reports progress on a single indicator fetch.
type CollectionIndicator struct {
	RunID     string `json:"run_id"`
	Source    string `json:"source"`
	Indicator string `json:"indicator"`
	Fetched   int    `json:"fetched"`
	Err       string `json:"error,omitempty"`
}

// CollectionComplete carries the final run summary.
type CollectionComplete struct {
	Result domain.CollectionResult `json:"result"`
}

// CollectionError reports a run-level failure.
type CollectionError struct {
	RunID   string `json:"run_id"`
	Source  string `json:"source,omitempty"`
	Message string `json:"message"`
}
