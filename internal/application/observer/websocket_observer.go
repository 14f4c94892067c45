package observer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/smilemakc/mbflow/internal/infrastructure/logger"
)

// EventPayload is the wire representation of an Event sent to WebSocket clients.
type EventPayload struct {
	EventType   string         `json:"event_type"`
	ExecutionID string         `json:"execution_id"`
	WorkflowID  string         `json:"workflow_id"`
	Timestamp   time.Time      `json:"timestamp"`
	Status      string         `json:"status"`
	NodeID      *string        `json:"node_id,omitempty"`
	NodeName    *string        `json:"node_name,omitempty"`
	NodeType    *string        `json:"node_type,omitempty"`
	WaveIndex   *int           `json:"wave_index,omitempty"`
	NodeCount   *int           `json:"node_count,omitempty"`
	DurationMs  *int64         `json:"duration_ms,omitempty"`
	Error       *string        `json:"error,omitempty"`
	Output      map[string]any `json:"output,omitempty"`
}

// WebSocketMessage is the top-level envelope for every message sent over a
// WebSocket connection: either an execution event or a control message.
type WebSocketMessage struct {
	Type      string         `json:"type"`
	Event     *EventPayload  `json:"event,omitempty"`
	Control   map[string]any `json:"control,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// WebSocketObserver forwards execution events to connected WebSocket clients
// through a hub, scoping delivery by execution ID where clients ask for it.
type WebSocketObserver struct {
	hub    *WebSocketHub
	logger *logger.Logger
	filter EventFilter
}

// WebSocketObserverOption configures a WebSocketObserver.
type WebSocketObserverOption func(*WebSocketObserver)

// WithWebSocketFilter restricts the events this observer is notified of.
func WithWebSocketFilter(filter EventFilter) WebSocketObserverOption {
	return func(o *WebSocketObserver) {
		o.filter = filter
	}
}

// WithWebSocketLogger sets the logger used for diagnostics.
func WithWebSocketLogger(l *logger.Logger) WebSocketObserverOption {
	return func(o *WebSocketObserver) {
		o.logger = l
	}
}

// NewWebSocketObserver creates an observer that broadcasts through hub.
func NewWebSocketObserver(hub *WebSocketHub, opts ...WebSocketObserverOption) *WebSocketObserver {
	o := &WebSocketObserver{hub: hub, logger: logger.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *WebSocketObserver) Name() string {
	return "websocket"
}

func (o *WebSocketObserver) Filter() EventFilter {
	return o.filter
}

// GetHub returns the hub this observer broadcasts through.
func (o *WebSocketObserver) GetHub() *WebSocketHub {
	return o.hub
}

func (o *WebSocketObserver) OnEvent(ctx context.Context, event Event) error {
	msg := o.eventToMessage(event)

	data, err := json.Marshal(msg)
	if err != nil {
		o.logger.Error("failed to marshal websocket event", "error", err)
		return err
	}

	o.hub.BroadcastToExecution(event.ExecutionID, data)
	return nil
}

func (o *WebSocketObserver) eventToMessage(event Event) *WebSocketMessage {
	payload := &EventPayload{
		EventType:   string(event.Type),
		ExecutionID: event.ExecutionID,
		WorkflowID:  event.WorkflowID,
		Timestamp:   event.Timestamp,
		Status:      event.Status,
		NodeID:      event.NodeID,
		NodeName:    event.NodeName,
		NodeType:    event.NodeType,
		WaveIndex:   event.WaveIndex,
		NodeCount:   event.NodeCount,
		DurationMs:  event.DurationMs,
		Output:      event.Output,
	}

	if event.Error != nil {
		msg := event.Error.Error()
		payload.Error = &msg
	}

	return &WebSocketMessage{
		Type:      "event",
		Event:     payload,
		Timestamp: time.Now(),
	}
}
