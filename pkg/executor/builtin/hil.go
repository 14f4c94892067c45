package builtin

import (
	"context"

	"github.com/smilemakc/mbflow/pkg/executor"
)

// HILExecutor runs a HUMAN_IN_THE_LOOP node. It never produces a final
// answer itself — it sets the control-output keys the work-queue driver
// (pkg/engine/driver.go) looks for (_hil_wait, _hil_interaction_id,
// _hil_timeout_seconds) and the driver suspends the node, records a
// hil_interactions row, and leaves the rest of the decision (which output
// port fires) to ResumeExecution once a human responds.
//
// One instance serves every HUMAN_IN_THE_LOOP subtype (APPROVAL, INPUT,
// SELECTION, REVIEW, CONFIRMATION, CUSTOM) since the pause mechanics are
// identical; the subtype only changes which output port the response
// eventually routes to, a decision the driver makes after resume.
type HILExecutor struct {
	*executor.BaseExecutor
}

// NewHILExecutor creates a new human-in-the-loop executor.
func NewHILExecutor() *HILExecutor {
	return &HILExecutor{
		BaseExecutor: executor.NewBaseExecutor("human_in_the_loop"),
	}
}

// Execute returns the control output that puts the node into a wait state.
func (e *HILExecutor) Execute(ctx context.Context, config map[string]any, input any) (any, error) {
	prompt, err := e.GetString(config, "prompt")
	if err != nil {
		return nil, err
	}

	output := map[string]any{
		"_hil_wait": true,
		"prompt":    prompt,
	}

	if timeoutSeconds := e.GetIntDefault(config, "timeout_seconds", 0); timeoutSeconds > 0 {
		output["_hil_timeout_seconds"] = timeoutSeconds
	}

	if options, ok := config["options"]; ok {
		output["options"] = options
	}
	if schema, ok := config["schema"]; ok {
		output["schema"] = schema
	}

	return output, nil
}

// Validate validates the HIL executor configuration.
func (e *HILExecutor) Validate(config map[string]any) error {
	return e.ValidateRequired(config, "prompt")
}
