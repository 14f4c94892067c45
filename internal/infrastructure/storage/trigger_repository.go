package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/smilemakc/mbflow/internal/domain/repository"
	"github.com/smilemakc/mbflow/internal/infrastructure/storage/models"
	"github.com/uptrace/bun"
)

var _ repository.TriggerRepository = (*TriggerRepository)(nil)

// TriggerRepository implements repository.TriggerRepository using Bun ORM.
type TriggerRepository struct {
	db *bun.DB
}

// NewTriggerRepository creates a new TriggerRepository.
func NewTriggerRepository(db *bun.DB) *TriggerRepository {
	return &TriggerRepository{db: db}
}

func (r *TriggerRepository) Create(ctx context.Context, trigger *models.TriggerModel) error {
	if trigger.ID == uuid.Nil {
		trigger.ID = uuid.New()
	}
	if _, err := r.db.NewInsert().Model(trigger).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create trigger: %w", err)
	}
	return nil
}

func (r *TriggerRepository) Update(ctx context.Context, trigger *models.TriggerModel) error {
	_, err := r.db.NewUpdate().Model(trigger).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update trigger: %w", err)
	}
	return nil
}

func (r *TriggerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewDelete().Model((*models.TriggerModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete trigger: %w", err)
	}
	return nil
}

func (r *TriggerRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.TriggerModel, error) {
	trigger := new(models.TriggerModel)
	err := r.db.NewSelect().Model(trigger).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find trigger: %w", err)
	}
	return trigger, nil
}

func (r *TriggerRepository) FindByWorkflowID(ctx context.Context, workflowID uuid.UUID) ([]*models.TriggerModel, error) {
	var triggers []*models.TriggerModel
	err := r.db.NewSelect().Model(&triggers).Where("workflow_id = ?", workflowID).Order("created_at ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find triggers by workflow: %w", err)
	}
	return triggers, nil
}

func (r *TriggerRepository) FindByType(ctx context.Context, triggerType string, limit, offset int) ([]*models.TriggerModel, error) {
	var triggers []*models.TriggerModel
	err := r.db.NewSelect().Model(&triggers).
		Where("type = ?", triggerType).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find triggers by type: %w", err)
	}
	return triggers, nil
}

func (r *TriggerRepository) FindEnabled(ctx context.Context) ([]*models.TriggerModel, error) {
	var triggers []*models.TriggerModel
	err := r.db.NewSelect().Model(&triggers).Where("enabled = ?", true).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find enabled triggers: %w", err)
	}
	return triggers, nil
}

func (r *TriggerRepository) FindEnabledByType(ctx context.Context, triggerType string) ([]*models.TriggerModel, error) {
	var triggers []*models.TriggerModel
	err := r.db.NewSelect().Model(&triggers).
		Where("enabled = ? AND type = ?", true, triggerType).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find enabled triggers by type: %w", err)
	}
	return triggers, nil
}

func (r *TriggerRepository) FindAll(ctx context.Context, limit, offset int) ([]*models.TriggerModel, error) {
	var triggers []*models.TriggerModel
	err := r.db.NewSelect().Model(&triggers).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find triggers: %w", err)
	}
	return triggers, nil
}

func (r *TriggerRepository) MarkTriggered(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewUpdate().Model((*models.TriggerModel)(nil)).
		Set("last_triggered_at = current_timestamp").
		Set("updated_at = current_timestamp").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark trigger triggered: %w", err)
	}
	return nil
}

func (r *TriggerRepository) Enable(ctx context.Context, id uuid.UUID) error {
	return r.setEnabled(ctx, id, true)
}

func (r *TriggerRepository) Disable(ctx context.Context, id uuid.UUID) error {
	return r.setEnabled(ctx, id, false)
}

func (r *TriggerRepository) setEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	_, err := r.db.NewUpdate().Model((*models.TriggerModel)(nil)).
		Set("enabled = ?", enabled).
		Set("updated_at = current_timestamp").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set trigger enabled=%v: %w", enabled, err)
	}
	return nil
}

func (r *TriggerRepository) Count(ctx context.Context) (int, error) {
	count, err := r.db.NewSelect().Model((*models.TriggerModel)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count triggers: %w", err)
	}
	return count, nil
}

func (r *TriggerRepository) CountByWorkflowID(ctx context.Context, workflowID uuid.UUID) (int, error) {
	count, err := r.db.NewSelect().Model((*models.TriggerModel)(nil)).Where("workflow_id = ?", workflowID).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count triggers by workflow: %w", err)
	}
	return count, nil
}

func (r *TriggerRepository) CountByType(ctx context.Context, triggerType string) (int, error) {
	count, err := r.db.NewSelect().Model((*models.TriggerModel)(nil)).Where("type = ?", triggerType).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count triggers by type: %w", err)
	}
	return count, nil
}
