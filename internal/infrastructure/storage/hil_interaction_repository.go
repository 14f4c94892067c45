package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/smilemakc/mbflow/internal/domain/repository"
	"github.com/smilemakc/mbflow/internal/infrastructure/storage/models"
	"github.com/uptrace/bun"
)

var _ repository.HILInteractionRepository = (*HILInteractionRepository)(nil)

// HILInteractionRepository implements repository.HILInteractionRepository
// using Bun ORM.
type HILInteractionRepository struct {
	db *bun.DB
}

// NewHILInteractionRepository creates a new HILInteractionRepository.
func NewHILInteractionRepository(db *bun.DB) *HILInteractionRepository {
	return &HILInteractionRepository{db: db}
}

func (r *HILInteractionRepository) Create(ctx context.Context, interaction *models.HILInteractionModel) error {
	if interaction.ID == uuid.Nil {
		interaction.ID = uuid.New()
	}
	if _, err := r.db.NewInsert().Model(interaction).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create hil interaction: %w", err)
	}
	return nil
}

func (r *HILInteractionRepository) Update(ctx context.Context, interaction *models.HILInteractionModel) error {
	_, err := r.db.NewUpdate().Model(interaction).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update hil interaction: %w", err)
	}
	return nil
}

func (r *HILInteractionRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.HILInteractionModel, error) {
	interaction := new(models.HILInteractionModel)
	err := r.db.NewSelect().Model(interaction).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find hil interaction: %w", err)
	}
	return interaction, nil
}

func (r *HILInteractionRepository) FindOpenByExecutionID(ctx context.Context, executionID uuid.UUID) ([]*models.HILInteractionModel, error) {
	var interactions []*models.HILInteractionModel
	err := r.db.NewSelect().Model(&interactions).
		Where("execution_id = ? AND status = ?", executionID, "pending").
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find open hil interactions: %w", err)
	}
	return interactions, nil
}

func (r *HILInteractionRepository) FindExpired(ctx context.Context) ([]*models.HILInteractionModel, error) {
	var interactions []*models.HILInteractionModel
	err := r.db.NewSelect().Model(&interactions).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", "pending", time.Now()).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find expired hil interactions: %w", err)
	}
	return interactions, nil
}

func (r *HILInteractionRepository) Resolve(ctx context.Context, id uuid.UUID, response models.JSONBMap, respondedBy string) error {
	_, err := r.db.NewUpdate().Model((*models.HILInteractionModel)(nil)).
		Set("status = ?", "resolved").
		Set("response = ?", response).
		Set("responded_by = ?", respondedBy).
		Set("resolved_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve hil interaction: %w", err)
	}
	return nil
}

func (r *HILInteractionRepository) Expire(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewUpdate().Model((*models.HILInteractionModel)(nil)).
		Set("status = ?", "expired").
		Set("resolved_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to expire hil interaction: %w", err)
	}
	return nil
}
