package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/smilemakc/mbflow/internal/infrastructure/storage/models"
)

// ExecutionStatistics summarizes execution outcomes over a time window.
type ExecutionStatistics struct {
	TotalExecutions int
	CompletedCount  int
	FailedCount     int
	CancelledCount  int
	RunningCount    int
	PendingCount    int
	AverageDuration *time.Duration
	SuccessRate     float64
	FailureRate     float64
}

// ExecutionRepository defines the interface for execution persistence.
type ExecutionRepository interface {
	Create(ctx context.Context, execution *models.ExecutionModel) error
	Update(ctx context.Context, execution *models.ExecutionModel) error
	Delete(ctx context.Context, id uuid.UUID) error

	FindByID(ctx context.Context, id uuid.UUID) (*models.ExecutionModel, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*models.ExecutionModel, error)
	FindByWorkflowID(ctx context.Context, workflowID uuid.UUID, limit, offset int) ([]*models.ExecutionModel, error)
	FindByStatus(ctx context.Context, status string, limit, offset int) ([]*models.ExecutionModel, error)
	FindByWorkflowIDAndStatus(ctx context.Context, workflowID uuid.UUID, status string, limit, offset int) ([]*models.ExecutionModel, error)
	FindAll(ctx context.Context, limit, offset int) ([]*models.ExecutionModel, error)
	FindRunning(ctx context.Context) ([]*models.ExecutionModel, error)

	Count(ctx context.Context) (int, error)
	CountByWorkflowID(ctx context.Context, workflowID uuid.UUID) (int, error)
	CountByStatus(ctx context.Context, status string) (int, error)

	CreateNodeExecution(ctx context.Context, nodeExecution *models.NodeExecutionModel) error
	UpdateNodeExecution(ctx context.Context, nodeExecution *models.NodeExecutionModel) error
	DeleteNodeExecution(ctx context.Context, id uuid.UUID) error
	FindNodeExecutionByID(ctx context.Context, id uuid.UUID) (*models.NodeExecutionModel, error)
	FindNodeExecutionsByExecutionID(ctx context.Context, executionID uuid.UUID) ([]*models.NodeExecutionModel, error)
	FindNodeExecutionsByWave(ctx context.Context, executionID uuid.UUID, wave int) ([]*models.NodeExecutionModel, error)
	FindNodeExecutionsByStatus(ctx context.Context, executionID uuid.UUID, status string) ([]*models.NodeExecutionModel, error)

	GetStatistics(ctx context.Context, workflowID *uuid.UUID, from, to time.Time) (*ExecutionStatistics, error)
}
