package models

import "time"

// HILInteractionStatus tracks a human-in-the-loop node's wait state.
type HILInteractionStatus string

const (
	HILInteractionStatusPending  HILInteractionStatus = "pending"
	HILInteractionStatusResolved HILInteractionStatus = "resolved"
	HILInteractionStatusExpired  HILInteractionStatus = "expired"
)

// HILInteraction is the runtime record of one pause at a HUMAN_IN_THE_LOOP
// node, mirroring the hil_interactions table (§6.3).
type HILInteraction struct {
	ID          string                 `json:"id"`
	ExecutionID string                 `json:"execution_id"`
	NodeID      string                 `json:"node_id"`
	Subtype     string                 `json:"subtype"` // APPROVAL, INPUT, SELECTION, REVIEW, CONFIRMATION, CUSTOM
	Prompt      string                 `json:"prompt,omitempty"`
	Options     []string               `json:"options,omitempty"`
	Status      HILInteractionStatus   `json:"status"`
	Response    map[string]interface{} `json:"response,omitempty"`
	RespondedBy string                 `json:"responded_by,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	ExpiresAt   *time.Time             `json:"expires_at,omitempty"`
	ResolvedAt  *time.Time             `json:"resolved_at,omitempty"`
}

// IsOpen reports whether this interaction is still awaiting a response.
func (h *HILInteraction) IsOpen() bool {
	return h.Status == HILInteractionStatusPending
}

// ExecutionPause is a serializable snapshot of a paused execution, mirroring
// workflow_execution_pauses. PauseContext carries exactly what the engine
// needs to resume: the pending-inputs table, the ready/queued items not yet
// dispatched, and which nodes have already executed.
type ExecutionPause struct {
	ID           string                 `json:"id"`
	ExecutionID  string                 `json:"execution_id"`
	WorkflowID   string                 `json:"workflow_id"`
	NodeID       string                 `json:"node_id"`
	PauseContext map[string]interface{} `json:"pause_context"`
	CreatedAt    time.Time              `json:"created_at"`
}
