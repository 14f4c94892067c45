package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/smilemakc/mbflow/internal/domain/repository"
	"github.com/smilemakc/mbflow/internal/infrastructure/storage/models"
	"github.com/uptrace/bun"
)

var _ repository.TriggerIndexRepository = (*TriggerIndexRepository)(nil)

// TriggerIndexRepository implements repository.TriggerIndexRepository
// using Bun ORM.
type TriggerIndexRepository struct {
	db *bun.DB
}

// NewTriggerIndexRepository creates a new TriggerIndexRepository.
func NewTriggerIndexRepository(db *bun.DB) *TriggerIndexRepository {
	return &TriggerIndexRepository{db: db}
}

// Upsert inserts or replaces the index row for a trigger. Each trigger owns
// at most one row, so a re-deploy simply deletes and re-inserts.
func (r *TriggerIndexRepository) Upsert(ctx context.Context, entry *models.TriggerIndexModel) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.TriggerIndexModel)(nil)).
			Where("trigger_id = ?", entry.TriggerID).Exec(ctx); err != nil {
			return fmt.Errorf("failed to clear trigger index row: %w", err)
		}
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		if _, err := tx.NewInsert().Model(entry).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert trigger index row: %w", err)
		}
		return nil
	})
}

func (r *TriggerIndexRepository) DeleteByTriggerID(ctx context.Context, triggerID uuid.UUID) error {
	_, err := r.db.NewDelete().Model((*models.TriggerIndexModel)(nil)).
		Where("trigger_id = ?", triggerID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete trigger index row: %w", err)
	}
	return nil
}

// SetDeploymentStatus updates every index row belonging to a workflow, kept
// in lockstep with the workflow's deployment state machine (§4.3.4) so
// Route's phase one only ever matches currently-deployed triggers.
func (r *TriggerIndexRepository) SetDeploymentStatus(ctx context.Context, workflowID uuid.UUID, status string) error {
	_, err := r.db.NewUpdate().Model((*models.TriggerIndexModel)(nil)).
		Set("deployment_status = ?", status).
		Set("updated_at = current_timestamp").
		Where("workflow_id = ?", workflowID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update trigger index deployment status: %w", err)
	}
	return nil
}

func (r *TriggerIndexRepository) FindCandidates(ctx context.Context, subtype, indexKey, deploymentStatus string) ([]*models.TriggerIndexModel, error) {
	var entries []*models.TriggerIndexModel
	err := r.db.NewSelect().Model(&entries).
		Where("subtype = ? AND index_key = ? AND deployment_status = ?", subtype, indexKey, deploymentStatus).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find trigger index candidates: %w", err)
	}
	return entries, nil
}
