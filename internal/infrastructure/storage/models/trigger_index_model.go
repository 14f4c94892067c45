package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TriggerIndexModel is one row of the trigger index table (§6.3): the
// coarse (subtype, index_key, deployment_status) lookup key a router uses
// for phase one of matching, plus the detailed filter phase two evaluates
// against the candidates phase one returns.
type TriggerIndexModel struct {
	bun.BaseModel `bun:"table:trigger_index,alias:ti"`

	ID               uuid.UUID `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	TriggerID        uuid.UUID `bun:"trigger_id,notnull,type:uuid" json:"trigger_id" validate:"required"`
	WorkflowID       uuid.UUID `bun:"workflow_id,notnull,type:uuid" json:"workflow_id" validate:"required"`
	Subtype          string    `bun:"subtype,notnull" json:"subtype" validate:"required"`
	IndexKey         string    `bun:"index_key,notnull" json:"index_key"`
	DeploymentStatus string    `bun:"deployment_status,notnull" json:"deployment_status" validate:"required,oneof=undeployed deploying deployed failed"`
	DetailedFilter   JSONBMap  `bun:"detailed_filter,type:jsonb,default:'{}'" json:"detailed_filter,omitempty"`
	SmartResumeToken string    `bun:"smart_resume_token" json:"smart_resume_token,omitempty"`
	CreatedAt        time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt        time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`

	// Relationships
	Trigger *TriggerModel `bun:"rel:belongs-to,join:trigger_id=id" json:"trigger,omitempty"`
}

// TableName returns the table name for TriggerIndexModel.
func (TriggerIndexModel) TableName() string {
	return "trigger_index"
}

// BeforeInsert hook to set timestamps.
func (t *TriggerIndexModel) BeforeInsert(ctx interface{}) error {
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.DetailedFilter == nil {
		t.DetailedFilter = make(JSONBMap)
	}
	return nil
}

// BeforeUpdate hook to update timestamp.
func (t *TriggerIndexModel) BeforeUpdate(ctx interface{}) error {
	t.UpdatedAt = time.Now()
	return nil
}

// CoarseKey returns the phase-one lookup key: subtype + index key, scoped
// to deployed triggers only (deployment_status is filtered at query time).
func (t *TriggerIndexModel) CoarseKey() string {
	return t.Subtype + ":" + t.IndexKey
}
