package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/smilemakc/mbflow/internal/domain/repository"
	"github.com/smilemakc/mbflow/internal/infrastructure/storage/models"
	"github.com/uptrace/bun"
)

var _ repository.WorkflowDeploymentHistoryRepository = (*WorkflowDeploymentHistoryRepository)(nil)

// WorkflowDeploymentHistoryRepository implements
// repository.WorkflowDeploymentHistoryRepository using Bun ORM.
type WorkflowDeploymentHistoryRepository struct {
	db *bun.DB
}

// NewWorkflowDeploymentHistoryRepository creates a new WorkflowDeploymentHistoryRepository.
func NewWorkflowDeploymentHistoryRepository(db *bun.DB) *WorkflowDeploymentHistoryRepository {
	return &WorkflowDeploymentHistoryRepository{db: db}
}

func (r *WorkflowDeploymentHistoryRepository) Create(ctx context.Context, entry *models.WorkflowDeploymentHistoryModel) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if _, err := r.db.NewInsert().Model(entry).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create deployment history entry: %w", err)
	}
	return nil
}

func (r *WorkflowDeploymentHistoryRepository) FindByWorkflowID(ctx context.Context, workflowID uuid.UUID, limit, offset int) ([]*models.WorkflowDeploymentHistoryModel, error) {
	var entries []*models.WorkflowDeploymentHistoryModel
	err := r.db.NewSelect().Model(&entries).
		Where("workflow_id = ?", workflowID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find deployment history: %w", err)
	}
	return entries, nil
}
