package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/smilemakc/mbflow/internal/infrastructure/storage/models"
)

// TriggerIndexRepository defines the interface for the trigger index table
// backing two-phase event routing (§4.3.3): a coarse lookup by
// (subtype, index_key, deployment_status) followed by an in-process
// detailed-filter pass over the candidates it returns.
type TriggerIndexRepository interface {
	Upsert(ctx context.Context, entry *models.TriggerIndexModel) error
	DeleteByTriggerID(ctx context.Context, triggerID uuid.UUID) error
	SetDeploymentStatus(ctx context.Context, workflowID uuid.UUID, status string) error

	FindCandidates(ctx context.Context, subtype, indexKey, deploymentStatus string) ([]*models.TriggerIndexModel, error)
}
