package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// HILInteractionModel persists one human-in-the-loop prompt raised by a
// running execution: the question asked, the port it will route to once
// answered, and the response once one arrives.
type HILInteractionModel struct {
	bun.BaseModel `bun:"table:hil_interactions,alias:hi"`

	ID          uuid.UUID  `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	ExecutionID uuid.UUID  `bun:"execution_id,notnull,type:uuid" json:"execution_id" validate:"required"`
	NodeID      string     `bun:"node_id,notnull" json:"node_id" validate:"required"`
	Subtype     string     `bun:"subtype,notnull" json:"subtype" validate:"required"`
	Prompt      string     `bun:"prompt" json:"prompt,omitempty"`
	Options     JSONBMap   `bun:"options,type:jsonb,default:'{}'" json:"options,omitempty"`
	Status      string     `bun:"status,notnull,default:'pending'" json:"status" validate:"required,oneof=pending resolved expired"`
	Response    JSONBMap   `bun:"response,type:jsonb" json:"response,omitempty"`
	RespondedBy string     `bun:"responded_by" json:"responded_by,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	ExpiresAt   *time.Time `bun:"expires_at" json:"expires_at,omitempty"`
	ResolvedAt  *time.Time `bun:"resolved_at" json:"resolved_at,omitempty"`

	// Relationships
	Execution *ExecutionModel `bun:"rel:belongs-to,join:execution_id=id" json:"execution,omitempty"`
}

// TableName returns the table name for HILInteractionModel.
func (HILInteractionModel) TableName() string {
	return "hil_interactions"
}

// BeforeInsert hook to set defaults.
func (h *HILInteractionModel) BeforeInsert(ctx interface{}) error {
	h.CreatedAt = time.Now()
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.Options == nil {
		h.Options = make(JSONBMap)
	}
	if h.Status == "" {
		h.Status = "pending"
	}
	return nil
}

// IsOpen reports whether the interaction is still awaiting a response.
func (h *HILInteractionModel) IsOpen() bool {
	return h.Status == "pending"
}
