package observer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/smilemakc/mbflow/internal/infrastructure/storage/models"
)

// EventRepository is the subset of repository.EventRepository the database
// observer needs. Declared locally to avoid an import cycle with the
// repository package's storage-model dependency.
type EventRepository interface {
	Append(ctx context.Context, event *models.EventModel) error
}

// DatabaseObserver persists every execution event to the append-only event
// log, independent of execution status polling.
type DatabaseObserver struct {
	repo EventRepository
}

// NewDatabaseObserver creates an observer that writes events to repo.
func NewDatabaseObserver(repo EventRepository) *DatabaseObserver {
	return &DatabaseObserver{repo: repo}
}

func (o *DatabaseObserver) Name() string {
	return "database"
}

func (o *DatabaseObserver) Filter() EventFilter {
	return nil
}

func (o *DatabaseObserver) OnEvent(ctx context.Context, event Event) error {
	model := o.convertToEventModel(event)
	return o.repo.Append(ctx, model)
}

func (o *DatabaseObserver) convertToEventModel(event Event) *models.EventModel {
	payload := map[string]interface{}{
		"workflow_id": event.WorkflowID,
		"status":      event.Status,
		"timestamp":   event.Timestamp.Format(time.RFC3339),
	}

	if event.NodeID != nil {
		payload["node_id"] = *event.NodeID
	}
	if event.NodeName != nil {
		payload["node_name"] = *event.NodeName
	}
	if event.NodeType != nil {
		payload["node_type"] = *event.NodeType
	}
	if event.WaveIndex != nil {
		payload["wave_index"] = *event.WaveIndex
	}
	if event.NodeCount != nil {
		payload["node_count"] = *event.NodeCount
	}
	if event.DurationMs != nil {
		payload["duration_ms"] = *event.DurationMs
	}
	if event.RetryCount != nil {
		payload["retry_count"] = *event.RetryCount
	}
	if event.Error != nil {
		payload["error"] = event.Error.Error()
	}
	if event.Input != nil {
		payload["input"] = event.Input
	}
	if event.Output != nil {
		payload["output"] = event.Output
	}
	if event.Variables != nil {
		payload["variables"] = event.Variables
	}
	if event.Metadata != nil {
		payload["metadata"] = event.Metadata
	}
	if event.Message != nil {
		payload["message"] = *event.Message
	}

	executionID, err := uuid.Parse(event.ExecutionID)
	if err != nil {
		executionID = uuid.Nil
	}

	return &models.EventModel{
		ExecutionID: executionID,
		EventType:   string(event.Type),
		Payload:     payload,
	}
}
