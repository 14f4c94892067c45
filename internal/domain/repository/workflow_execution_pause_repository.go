package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/smilemakc/mbflow/internal/infrastructure/storage/models"
)

// WorkflowExecutionPauseRepository defines the interface for persisting
// suspended execution state (§4.2.2 suspension points).
type WorkflowExecutionPauseRepository interface {
	Create(ctx context.Context, pause *models.WorkflowExecutionPauseModel) error
	Resolve(ctx context.Context, id uuid.UUID) error

	FindByID(ctx context.Context, id uuid.UUID) (*models.WorkflowExecutionPauseModel, error)
	FindOpenByExecutionID(ctx context.Context, executionID uuid.UUID) ([]*models.WorkflowExecutionPauseModel, error)
	FindOpenByWorkflowID(ctx context.Context, workflowID uuid.UUID) ([]*models.WorkflowExecutionPauseModel, error)
	FindDueForResume(ctx context.Context) ([]*models.WorkflowExecutionPauseModel, error)
}
