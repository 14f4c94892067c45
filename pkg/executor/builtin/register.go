package builtin

import "github.com/smilemakc/mbflow/pkg/executor"

// RegisterBuiltins registers every runner this repository ships, keyed by
// the composite "TYPE/SUBTYPE" the Node Specification Registry uses, plus
// the single passthrough fallback for any (type, subtype) pair that has a
// spec but no dedicated runner yet.
func RegisterBuiltins(manager executor.Manager) error {
	executors := map[string]executor.Executor{
		executor.PassthroughKey: executor.PassthroughExecutor,

		"ACTION/HTTP_REQUEST":         NewHTTPExecutor(),
		"ACTION/DATA_TRANSFORMATION":  NewTransformExecutor(),

		"FLOW/IF":    NewConditionalExecutor(),
		"FLOW/MERGE": NewMergeExecutor(),
		"FLOW/WAIT":  NewWaitExecutor(),

		"HUMAN_IN_THE_LOOP/APPROVAL":     NewHILExecutor(),
		"HUMAN_IN_THE_LOOP/INPUT":        NewHILExecutor(),
		"HUMAN_IN_THE_LOOP/SELECTION":    NewHILExecutor(),
		"HUMAN_IN_THE_LOOP/REVIEW":       NewHILExecutor(),
		"HUMAN_IN_THE_LOOP/CONFIRMATION": NewHILExecutor(),
		"HUMAN_IN_THE_LOOP/CUSTOM":       NewHILExecutor(),

		"AI_AGENT/CHAT": NewLLMExecutor(),

		"EXTERNAL_ACTION/CHAT_SEND":       NewTelegramSendExecutor(),
		"EXTERNAL_ACTION/DOCS_READ":       NewGoogleDriveExecutor(),
		"EXTERNAL_ACTION/DOCS_WRITE":      NewGoogleDriveExecutor(),
		"EXTERNAL_ACTION/SCRAPE_URL":      NewRSSParserExecutor(),

		"TOOL/FUNCTION": NewFunctionCallExecutor(),
	}

	for name, exec := range executors {
		if err := manager.Register(name, exec); err != nil {
			return err
		}
	}

	return nil
}

// MustRegisterBuiltins registers all built-in executors and panics on error.
// This is a convenience function for initialization code.
func MustRegisterBuiltins(manager executor.Manager) {
	if err := RegisterBuiltins(manager); err != nil {
		panic("failed to register built-in executors: " + err.Error())
	}
}
