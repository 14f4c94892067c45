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

var _ repository.WorkflowExecutionPauseRepository = (*WorkflowExecutionPauseRepository)(nil)

// WorkflowExecutionPauseRepository implements
// repository.WorkflowExecutionPauseRepository using Bun ORM.
type WorkflowExecutionPauseRepository struct {
	db *bun.DB
}

// NewWorkflowExecutionPauseRepository creates a new WorkflowExecutionPauseRepository.
func NewWorkflowExecutionPauseRepository(db *bun.DB) *WorkflowExecutionPauseRepository {
	return &WorkflowExecutionPauseRepository{db: db}
}

func (r *WorkflowExecutionPauseRepository) Create(ctx context.Context, pause *models.WorkflowExecutionPauseModel) error {
	if pause.ID == uuid.Nil {
		pause.ID = uuid.New()
	}
	if _, err := r.db.NewInsert().Model(pause).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create execution pause: %w", err)
	}
	return nil
}

func (r *WorkflowExecutionPauseRepository) Resolve(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewUpdate().Model((*models.WorkflowExecutionPauseModel)(nil)).
		Set("resolved_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve execution pause: %w", err)
	}
	return nil
}

func (r *WorkflowExecutionPauseRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.WorkflowExecutionPauseModel, error) {
	pause := new(models.WorkflowExecutionPauseModel)
	err := r.db.NewSelect().Model(pause).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find execution pause: %w", err)
	}
	return pause, nil
}

func (r *WorkflowExecutionPauseRepository) FindOpenByExecutionID(ctx context.Context, executionID uuid.UUID) ([]*models.WorkflowExecutionPauseModel, error) {
	var pauses []*models.WorkflowExecutionPauseModel
	err := r.db.NewSelect().Model(&pauses).
		Where("execution_id = ? AND resolved_at IS NULL", executionID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find open execution pauses: %w", err)
	}
	return pauses, nil
}

func (r *WorkflowExecutionPauseRepository) FindOpenByWorkflowID(ctx context.Context, workflowID uuid.UUID) ([]*models.WorkflowExecutionPauseModel, error) {
	var pauses []*models.WorkflowExecutionPauseModel
	err := r.db.NewSelect().Model(&pauses).
		Where("workflow_id = ? AND resolved_at IS NULL", workflowID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find open execution pauses by workflow: %w", err)
	}
	return pauses, nil
}

func (r *WorkflowExecutionPauseRepository) FindDueForResume(ctx context.Context) ([]*models.WorkflowExecutionPauseModel, error) {
	var pauses []*models.WorkflowExecutionPauseModel
	err := r.db.NewSelect().Model(&pauses).
		Where("resolved_at IS NULL AND resume_at IS NOT NULL AND resume_at <= ?", time.Now()).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find execution pauses due for resume: %w", err)
	}
	return pauses, nil
}
