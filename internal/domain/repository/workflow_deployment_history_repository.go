package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/smilemakc/mbflow/internal/infrastructure/storage/models"
)

// WorkflowDeploymentHistoryRepository defines the interface for auditing
// workflow deployment-status transitions.
type WorkflowDeploymentHistoryRepository interface {
	Create(ctx context.Context, entry *models.WorkflowDeploymentHistoryModel) error
	FindByWorkflowID(ctx context.Context, workflowID uuid.UUID, limit, offset int) ([]*models.WorkflowDeploymentHistoryModel, error)
}
