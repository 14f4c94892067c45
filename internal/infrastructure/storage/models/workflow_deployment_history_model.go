package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// WorkflowDeploymentHistoryModel records one transition of a workflow's
// deployment status, mirroring the workflow_deployment_history table.
type WorkflowDeploymentHistoryModel struct {
	bun.BaseModel `bun:"table:workflow_deployment_history,alias:wdh"`

	ID         uuid.UUID `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	WorkflowID uuid.UUID `bun:"workflow_id,notnull,type:uuid" json:"workflow_id" validate:"required"`
	FromStatus string    `bun:"from_status,notnull" json:"from_status"`
	ToStatus   string    `bun:"to_status,notnull" json:"to_status" validate:"required"`
	Reason     string    `bun:"reason" json:"reason,omitempty"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`

	// Relationships
	Workflow *WorkflowModel `bun:"rel:belongs-to,join:workflow_id=id" json:"workflow,omitempty"`
}

// TableName returns the table name for WorkflowDeploymentHistoryModel.
func (WorkflowDeploymentHistoryModel) TableName() string {
	return "workflow_deployment_history"
}

// BeforeInsert hook to set timestamp.
func (h *WorkflowDeploymentHistoryModel) BeforeInsert(ctx interface{}) error {
	h.CreatedAt = time.Now()
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
