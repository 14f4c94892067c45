package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/expr-lang/expr"
)

// ConvertSandbox runs conversion-function and condition expressions
// (Edge.ConversionFunction, FLOW.IF's "condition" param) the way the
// teacher's builtin.ConditionalExecutor and builtin.TransformExecutor run
// expr-lang programs, but wrapped in a wall-clock timeout and an
// input/output size budget. expr-lang has no filesystem or network surface
// by construction, so the sandbox only needs to bound time and size — it
// does not need a seccomp-style syscall filter the way a shelled-out
// evaluator would.
type ConvertSandbox struct {
	Timeout   time.Duration
	MaxBytes  int
}

// NewConvertSandbox builds a sandbox with sane defaults (200ms, 16MiB).
func NewConvertSandbox(timeout time.Duration, maxBytes int) *ConvertSandbox {
	if timeout <= 0 {
		timeout = 200 * time.Millisecond
	}
	if maxBytes <= 0 {
		maxBytes = 16 << 20
	}
	return &ConvertSandbox{Timeout: timeout, MaxBytes: maxBytes}
}

// Eval compiles and runs exprStr against env (conventionally {"input": ...}).
// It returns an error if the program exceeds the byte budget on input/output
// or doesn't finish within the timeout.
func (s *ConvertSandbox) Eval(ctx context.Context, exprStr string, env map[string]interface{}) (interface{}, error) {
	if err := s.checkSize(env); err != nil {
		return nil, fmt.Errorf("convert: input exceeds sandbox budget: %w", err)
	}

	program, err := expr.Compile(exprStr, expr.Env(env))
	if err != nil {
		return nil, fmt.Errorf("convert: failed to compile expression: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	type result struct {
		val interface{}
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := expr.Run(program, env)
		ch <- result{v, err}
	}()

	select {
	case <-runCtx.Done():
		return nil, fmt.Errorf("convert: expression exceeded %s timeout", s.Timeout)
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("convert: expression execution failed: %w", r.err)
		}
		if err := s.checkSize(r.val); err != nil {
			return nil, fmt.Errorf("convert: output exceeds sandbox budget: %w", err)
		}
		return r.val, nil
	}
}

// EvalBool is a convenience wrapper for FLOW.IF, which requires a boolean result.
func (s *ConvertSandbox) EvalBool(ctx context.Context, exprStr string, env map[string]interface{}) (bool, error) {
	v, err := s.Eval(ctx, exprStr, env)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("convert: expression %q did not evaluate to a boolean", exprStr)
	}
	return b, nil
}

func (s *ConvertSandbox) checkSize(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		// not everything expr produces is JSON-marshalable (e.g. funcs); skip the budget check rather than fail spuriously
		return nil
	}
	if len(data) > s.MaxBytes {
		return fmt.Errorf("%d bytes exceeds budget of %d", len(data), s.MaxBytes)
	}
	return nil
}
