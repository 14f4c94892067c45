package engine

import (
	"context"
	"fmt"

	"github.com/smilemakc/mbflow/pkg/models"
)

// WorkflowLoader resolves a workflow by ID for sub_workflow nodes and other
// cross-workflow references. Production wiring backs this with the workflow
// repository; tests use MockWorkflowLoader or NilWorkflowLoader.
type WorkflowLoader interface {
	LoadWorkflow(ctx context.Context, workflowID string) (*models.Workflow, error)
}

// NilWorkflowLoader always errors. It is the safe default for executors that
// never reference another workflow, so a misconfigured sub_workflow node
// fails loudly instead of silently resolving nothing.
type NilWorkflowLoader struct{}

func NewNilWorkflowLoader() *NilWorkflowLoader {
	return &NilWorkflowLoader{}
}

func (l *NilWorkflowLoader) LoadWorkflow(_ context.Context, workflowID string) (*models.Workflow, error) {
	return nil, fmt.Errorf("workflow loading is not configured: cannot load workflow %s", workflowID)
}

// MockWorkflowLoader resolves workflows from an in-memory map, for tests.
type MockWorkflowLoader struct {
	workflows map[string]*models.Workflow
}

func NewMockWorkflowLoader(workflows map[string]*models.Workflow) *MockWorkflowLoader {
	return &MockWorkflowLoader{workflows: workflows}
}

func (l *MockWorkflowLoader) LoadWorkflow(_ context.Context, workflowID string) (*models.Workflow, error) {
	wf, ok := l.workflows[workflowID]
	if !ok {
		return nil, fmt.Errorf("workflow %s not found", workflowID)
	}
	return wf, nil
}
