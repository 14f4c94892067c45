package executor

import (
	"context"
	"strings"
)

// PassthroughKey is the registration key for the single fallback runner that
// any (type, subtype) pair resolves to when nothing more specific is
// registered — it copies its input straight to its output.
const PassthroughKey = "__passthrough__"

// RunnerKey builds the composite registry key for a node's (type, subtype)
// pair, stripping the "_NODE" suffix some callers still pass on type.
func RunnerKey(nodeType, subtype string) string {
	nodeType = strings.ToUpper(strings.TrimSuffix(nodeType, "_NODE"))
	if subtype == "" {
		return nodeType
	}
	return nodeType + "/" + strings.ToUpper(subtype)
}

// Resolve looks up an executor for (type, subtype), falling back to the
// bare type key, then to the registered passthrough runner. This mirrors
// the Node Specification Registry's own Lookup fallback shape but lives
// here so the executor package doesn't need to import pkg/registry.
func Resolve(m Manager, nodeType, subtype string) (Executor, error) {
	if exec, err := m.Get(RunnerKey(nodeType, subtype)); err == nil {
		return exec, nil
	}
	if exec, err := m.Get(RunnerKey(nodeType, "")); err == nil {
		return exec, nil
	}
	return m.Get(PassthroughKey)
}

// PassthroughExecutor returns its input unchanged. It backs every (type,
// subtype) pair that has a registry spec but no dedicated runner yet.
var PassthroughExecutor Executor = &ExecutorFunc{
	ExecuteFn: func(_ context.Context, _ map[string]any, input any) (any, error) {
		return input, nil
	},
}
