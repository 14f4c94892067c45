package engine

import (
	"context"

	"github.com/smilemakc/mbflow/pkg/models"
)

// ExecutionRunner executes workflows and manages their lifecycle. This
// interface abstracts the engine for use by the SDK and other consumers
// without requiring internal package imports.
type ExecutionRunner interface {
	Execute(ctx context.Context, workflow *models.Workflow, input map[string]any, opts *ExecutionOptions) (*models.Execution, error)
	GetExecution(ctx context.Context, executionID string) (*models.Execution, error)
	CancelExecution(ctx context.Context, executionID string) error
}

// StandaloneExecutor executes workflows without persistence. Useful for
// testing, demos, and simple automation scripts.
type StandaloneExecutor interface {
	ExecuteStandalone(ctx context.Context, workflow *models.Workflow, input map[string]any, opts *ExecutionOptions) (*models.Execution, error)
}

// ConditionEvaluator evaluates edge conditions.
// Simple impl: string matching. Full impl: expr-lang with caching.
type ConditionEvaluator interface {
	Evaluate(condition string, nodeOutput any) (bool, error)
}

// ExecutionNotifier receives execution lifecycle events. NoOpNotifier is
// used for standalone runs; ObserverNotifier fans out through the
// observer package for the full engine.
type ExecutionNotifier interface {
	Notify(ctx context.Context, event ExecutionEvent)
}

// NoOpNotifier discards every event. Used where no observer is wired, e.g.
// unit tests and the standalone executor.
type NoOpNotifier struct{}

func NewNoOpNotifier() *NoOpNotifier { return &NoOpNotifier{} }

func (n *NoOpNotifier) Notify(_ context.Context, _ ExecutionEvent) {}

// EventType constants for execution events.
const (
	EventTypeExecutionStarted         = "execution.started"
	EventTypeExecutionCompleted       = "execution.completed"
	EventTypeExecutionFailed          = "execution.failed"
	EventTypeExecutionCancelled       = "execution.cancelled"
	EventTypeExecutionPaused          = "execution.paused"
	EventTypeExecutionResumed         = "execution.resumed"
	EventTypeWaveStarted              = "wave.started"
	EventTypeWaveCompleted            = "wave.completed"
	EventTypeNodeStarted              = "node.started"
	EventTypeNodeCompleted            = "node.completed"
	EventTypeNodeFailed               = "node.failed"
	EventTypeNodeSkipped              = "node.skipped"
	EventTypeNodeRetrying             = "node.retrying"
	EventTypeNodePaused               = "node.paused"
	EventTypeLoopIteration            = "loop.iteration"
	EventTypeLoopExhausted            = "loop.exhausted"
	EventTypeSubWorkflowProgress      = "sub_workflow.progress"
	EventTypeSubWorkflowItemCompleted = "sub_workflow.item_completed"
	EventTypeSubWorkflowItemFailed    = "sub_workflow.item_failed"
)
