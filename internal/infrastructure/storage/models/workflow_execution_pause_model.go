package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// WorkflowExecutionPauseModel persists the suspended state of one node
// within a running execution: everything ResumeExecution needs to pick the
// run back up without replaying nodes that already completed.
type WorkflowExecutionPauseModel struct {
	bun.BaseModel `bun:"table:workflow_execution_pauses,alias:wep"`

	ID            uuid.UUID  `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	ExecutionID   uuid.UUID  `bun:"execution_id,notnull,type:uuid" json:"execution_id" validate:"required"`
	WorkflowID    uuid.UUID  `bun:"workflow_id,notnull,type:uuid" json:"workflow_id" validate:"required"`
	NodeID        string     `bun:"node_id,notnull" json:"node_id" validate:"required"`
	ActivationID  string     `bun:"activation_id" json:"activation_id,omitempty"`
	Reason        string     `bun:"reason,notnull" json:"reason" validate:"required,oneof=hil_wait timer"`
	InteractionID *uuid.UUID `bun:"interaction_id,type:uuid" json:"interaction_id,omitempty"`
	Context       JSONBMap   `bun:"context,type:jsonb,notnull,default:'{}'" json:"context"`
	ResumeAt      *time.Time `bun:"resume_at" json:"resume_at,omitempty"`
	CreatedAt     time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	ResolvedAt    *time.Time `bun:"resolved_at" json:"resolved_at,omitempty"`

	// Relationships
	Execution *ExecutionModel `bun:"rel:belongs-to,join:execution_id=id" json:"execution,omitempty"`
}

// TableName returns the table name for WorkflowExecutionPauseModel.
func (WorkflowExecutionPauseModel) TableName() string {
	return "workflow_execution_pauses"
}

// BeforeInsert hook to set defaults.
func (p *WorkflowExecutionPauseModel) BeforeInsert(ctx interface{}) error {
	p.CreatedAt = time.Now()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Context == nil {
		p.Context = make(JSONBMap)
	}
	return nil
}

// IsOpen reports whether the pause is still unresolved.
func (p *WorkflowExecutionPauseModel) IsOpen() bool {
	return p.ResolvedAt == nil
}
