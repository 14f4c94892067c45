package observer

import (
	"context"

	"github.com/smilemakc/mbflow/internal/infrastructure/logger"
)

// LoggerObserver writes execution events to structured logs, useful as a
// zero-configuration fallback when no database or HTTP observer is wired.
type LoggerObserver struct {
	logger *logger.Logger
	filter EventFilter
}

// LoggerObserverOption configures a LoggerObserver.
type LoggerObserverOption func(*LoggerObserver)

// WithLoggerInstance sets the logger used to emit events.
func WithLoggerInstance(l *logger.Logger) LoggerObserverOption {
	return func(o *LoggerObserver) {
		o.logger = l
	}
}

// WithLoggerFilter restricts the events this observer is notified of.
func WithLoggerFilter(filter EventFilter) LoggerObserverOption {
	return func(o *LoggerObserver) {
		o.filter = filter
	}
}

// NewLoggerObserver creates a LoggerObserver, defaulting to the package logger.
func NewLoggerObserver(opts ...LoggerObserverOption) *LoggerObserver {
	o := &LoggerObserver{logger: logger.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *LoggerObserver) Name() string {
	return "logger"
}

func (o *LoggerObserver) Filter() EventFilter {
	return o.filter
}

func (o *LoggerObserver) OnEvent(ctx context.Context, event Event) error {
	args := []interface{}{
		"event_type", string(event.Type),
		"execution_id", event.ExecutionID,
		"workflow_id", event.WorkflowID,
		"status", event.Status,
	}
	if event.NodeID != nil {
		args = append(args, "node_id", *event.NodeID)
	}
	if event.DurationMs != nil {
		args = append(args, "duration_ms", *event.DurationMs)
	}

	if event.Error != nil {
		args = append(args, "error", event.Error.Error())
		o.logger.ErrorContext(ctx, "execution event", args...)
		return nil
	}

	o.logger.InfoContext(ctx, "execution event", args...)
	return nil
}
