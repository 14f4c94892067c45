package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/smilemakc/mbflow/internal/infrastructure/storage/models"
)

// HILInteractionRepository defines the interface for human-in-the-loop
// interaction persistence.
type HILInteractionRepository interface {
	Create(ctx context.Context, interaction *models.HILInteractionModel) error
	Update(ctx context.Context, interaction *models.HILInteractionModel) error

	FindByID(ctx context.Context, id uuid.UUID) (*models.HILInteractionModel, error)
	FindOpenByExecutionID(ctx context.Context, executionID uuid.UUID) ([]*models.HILInteractionModel, error)
	FindExpired(ctx context.Context) ([]*models.HILInteractionModel, error)

	Resolve(ctx context.Context, id uuid.UUID, response models.JSONBMap, respondedBy string) error
	Expire(ctx context.Context, id uuid.UUID) error
}
