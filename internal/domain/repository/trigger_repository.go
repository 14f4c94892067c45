package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/smilemakc/mbflow/internal/infrastructure/storage/models"
)

// TriggerRepository defines the interface for trigger persistence.
type TriggerRepository interface {
	Create(ctx context.Context, trigger *models.TriggerModel) error
	Update(ctx context.Context, trigger *models.TriggerModel) error
	Delete(ctx context.Context, id uuid.UUID) error

	FindByID(ctx context.Context, id uuid.UUID) (*models.TriggerModel, error)
	FindByWorkflowID(ctx context.Context, workflowID uuid.UUID) ([]*models.TriggerModel, error)
	FindByType(ctx context.Context, triggerType string, limit, offset int) ([]*models.TriggerModel, error)
	FindEnabled(ctx context.Context) ([]*models.TriggerModel, error)
	FindEnabledByType(ctx context.Context, triggerType string) ([]*models.TriggerModel, error)
	FindAll(ctx context.Context, limit, offset int) ([]*models.TriggerModel, error)

	MarkTriggered(ctx context.Context, id uuid.UUID) error
	Enable(ctx context.Context, id uuid.UUID) error
	Disable(ctx context.Context, id uuid.UUID) error

	Count(ctx context.Context) (int, error)
	CountByWorkflowID(ctx context.Context, workflowID uuid.UUID) (int, error)
	CountByType(ctx context.Context, triggerType string) (int, error)
}
