package builtin

import (
	"context"
	"fmt"

	"github.com/smilemakc/mbflow/pkg/executor"
)

// WaitExecutor runs a FLOW.WAIT node. Like HILExecutor it never produces a
// final answer directly — it sets the _wait/_delay_ms control keys the
// driver inspects to either block in place (short delays) or suspend the
// node and resume it on a timer (long ones), per the suspension points a
// _wait output triggers.
type WaitExecutor struct {
	*executor.BaseExecutor
}

// NewWaitExecutor creates a new wait executor.
func NewWaitExecutor() *WaitExecutor {
	return &WaitExecutor{
		BaseExecutor: executor.NewBaseExecutor("wait"),
	}
}

// Execute returns the control output that delays the node by duration_ms.
func (e *WaitExecutor) Execute(ctx context.Context, config map[string]any, input any) (any, error) {
	durationMs, err := e.GetInt(config, "duration_ms")
	if err != nil {
		return nil, err
	}
	if durationMs <= 0 {
		return nil, fmt.Errorf("duration_ms must be > 0")
	}

	return map[string]any{
		"_wait":     true,
		"_delay_ms": durationMs,
	}, nil
}

// Validate validates the wait executor configuration.
func (e *WaitExecutor) Validate(config map[string]any) error {
	return e.ValidateRequired(config, "duration_ms")
}
