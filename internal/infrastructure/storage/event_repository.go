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

var _ repository.EventRepository = (*EventRepository)(nil)

// EventRepository implements repository.EventRepository using Bun ORM.
// Sequence numbers are assigned per execution as MAX(sequence)+1 inside the
// insert transaction, keeping the event log append-only and ordered.
type EventRepository struct {
	db *bun.DB

	pollInterval time.Duration
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *bun.DB) *EventRepository {
	return &EventRepository{db: db, pollInterval: 200 * time.Millisecond}
}

func (r *EventRepository) Append(ctx context.Context, event *models.EventModel) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return r.appendTx(ctx, tx, event)
	})
}

func (r *EventRepository) appendTx(ctx context.Context, tx bun.Tx, event *models.EventModel) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	var maxSeq int64
	err := tx.NewSelect().
		Model((*models.EventModel)(nil)).
		ColumnExpr("COALESCE(MAX(sequence), 0)").
		Where("execution_id = ?", event.ExecutionID).
		Scan(ctx, &maxSeq)
	if err != nil {
		return fmt.Errorf("failed to compute next sequence: %w", err)
	}
	event.Sequence = maxSeq + 1

	if _, err := tx.NewInsert().Model(event).Exec(ctx); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *EventRepository) AppendBatch(ctx context.Context, events []*models.EventModel) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, event := range events {
			if err := r.appendTx(ctx, tx, event); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *EventRepository) FindByExecutionID(ctx context.Context, executionID uuid.UUID) ([]*models.EventModel, error) {
	var events []*models.EventModel
	err := r.db.NewSelect().Model(&events).
		Where("execution_id = ?", executionID).
		Order("sequence ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find events by execution: %w", err)
	}
	return events, nil
}

func (r *EventRepository) FindByExecutionIDSince(ctx context.Context, executionID uuid.UUID, sinceSequence int64) ([]*models.EventModel, error) {
	var events []*models.EventModel
	err := r.db.NewSelect().Model(&events).
		Where("execution_id = ? AND sequence > ?", executionID, sinceSequence).
		Order("sequence ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find events since sequence: %w", err)
	}
	return events, nil
}

func (r *EventRepository) FindByType(ctx context.Context, eventType string, limit, offset int) ([]*models.EventModel, error) {
	var events []*models.EventModel
	err := r.db.NewSelect().Model(&events).
		Where("event_type = ?", eventType).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find events by type: %w", err)
	}
	return events, nil
}

func (r *EventRepository) FindByTimeRange(ctx context.Context, from, to time.Time, limit, offset int) ([]*models.EventModel, error) {
	var events []*models.EventModel
	err := r.db.NewSelect().Model(&events).
		Where("created_at >= ? AND created_at <= ?", from, to).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find events by time range: %w", err)
	}
	return events, nil
}

func (r *EventRepository) FindLatestByExecutionID(ctx context.Context, executionID uuid.UUID) (*models.EventModel, error) {
	event := new(models.EventModel)
	err := r.db.NewSelect().Model(event).
		Where("execution_id = ?", executionID).
		Order("sequence DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find latest event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) Count(ctx context.Context) (int, error) {
	count, err := r.db.NewSelect().Model((*models.EventModel)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

func (r *EventRepository) CountByExecutionID(ctx context.Context, executionID uuid.UUID) (int, error) {
	count, err := r.db.NewSelect().Model((*models.EventModel)(nil)).Where("execution_id = ?", executionID).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count events by execution: %w", err)
	}
	return count, nil
}

func (r *EventRepository) CountByType(ctx context.Context, eventType string) (int, error) {
	count, err := r.db.NewSelect().Model((*models.EventModel)(nil)).Where("event_type = ?", eventType).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count events by type: %w", err)
	}
	return count, nil
}

// Stream polls for new events belonging to an execution and emits them in
// sequence order, starting strictly after fromSequence. It stops when ctx is
// cancelled.
func (r *EventRepository) Stream(ctx context.Context, executionID uuid.UUID, fromSequence int64) (<-chan *models.EventModel, <-chan error) {
	eventChan := make(chan *models.EventModel)
	errChan := make(chan error, 1)

	go func() {
		defer close(eventChan)

		last := fromSequence
		ticker := time.NewTicker(r.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				events, err := r.FindByExecutionIDSince(ctx, executionID, last)
				if err != nil {
					select {
					case errChan <- err:
					default:
					}
					return
				}
				for _, event := range events {
					select {
					case eventChan <- event:
						last = event.Sequence
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return eventChan, errChan
}
