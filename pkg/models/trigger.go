package models

import (
	"time"
)

// TriggerType is the coarse trigger category, matching a node spec's Type
// when the node is a TRIGGER node.
type TriggerType string

const (
	TriggerTypeManual   TriggerType = "manual"
	TriggerTypeCron     TriggerType = "cron"
	TriggerTypeWebhook  TriggerType = "webhook"
	TriggerTypeEvent    TriggerType = "event"
	TriggerTypeInterval TriggerType = "interval"
)

// Trigger is the runtime-facing view of a trigger node's deployment config.
// It is distinct from the storage-layer TriggerModel (which additionally
// carries the bun table mapping and soft-delete/versioning columns).
type Trigger struct {
	ID         string                 `json:"id"`
	WorkflowID string                 `json:"workflow_id"`
	NodeID     string                 `json:"node_id"`
	Type       TriggerType            `json:"type"`
	Subtype    string                 `json:"subtype,omitempty"`
	Config     map[string]interface{} `json:"config"`
	Enabled    bool                   `json:"enabled"`
	IndexKey   string                 `json:"index_key,omitempty"`
	LastRun    *time.Time             `json:"last_run,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// Validate validates the trigger.
func (t *Trigger) Validate() error {
	if t.WorkflowID == "" {
		return &ValidationError{Field: "workflow_id", Message: "workflow ID is required"}
	}
	if t.NodeID == "" {
		return &ValidationError{Field: "node_id", Message: "node ID is required"}
	}
	switch t.Type {
	case TriggerTypeManual, TriggerTypeCron, TriggerTypeWebhook, TriggerTypeEvent:
	default:
		return &ValidationError{Field: "type", Message: "unknown trigger type: " + string(t.Type)}
	}
	if t.Type == TriggerTypeCron {
		if _, ok := t.Config["expression"].(string); !ok {
			return &ValidationError{Field: "config.expression", Message: "cron trigger requires a schedule expression"}
		}
	}
	return nil
}

// CoarseIndexKey returns the key used for the first (coarse) phase of
// two-phase trigger matching: all triggers sharing (subtype, index_key)
// are candidates that then run through their detailed filter.
func (t *Trigger) CoarseIndexKey() string {
	return string(t.Type) + ":" + t.Subtype + ":" + t.IndexKey
}

// RawEvent is an inbound event handed to the router before it has been
// matched against any trigger's detailed filter — a webhook delivery, a
// chat message, a source-control notification, a calendar tick, or a
// scrape result.
type RawEvent struct {
	Source    string                 `json:"source"` // e.g. "webhook", "chat", "source_control", "calendar", "scrape"
	Subtype   string                 `json:"subtype,omitempty"`
	IndexKey  string                 `json:"index_key,omitempty"`
	Headers   map[string]string      `json:"headers,omitempty"`
	Payload   map[string]interface{} `json:"payload"`
	Signature string                 `json:"signature,omitempty"`
	EventTime time.Time              `json:"event_time"`
}

// TriggerIndexEntry mirrors one row of the trigger_index table (§6.3):
// the coarse lookup key plus the detailed filter evaluated for a match.
type TriggerIndexEntry struct {
	TriggerID        string                 `json:"trigger_id"`
	WorkflowID       string                 `json:"workflow_id"`
	Subtype          string                 `json:"subtype"`
	IndexKey         string                 `json:"index_key"`
	DetailedFilter   map[string]interface{} `json:"detailed_filter,omitempty"`
	SmartResumeToken string                 `json:"smart_resume_token,omitempty"`
}

// DeploymentHistoryEntry records a single transition of a workflow's
// DeploymentStatus, mirroring the workflow_deployment_history table.
type DeploymentHistoryEntry struct {
	ID         string           `json:"id"`
	WorkflowID string           `json:"workflow_id"`
	FromStatus DeploymentStatus `json:"from_status"`
	ToStatus   DeploymentStatus `json:"to_status"`
	Reason     string           `json:"reason,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}
