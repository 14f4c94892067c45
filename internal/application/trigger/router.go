package trigger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/smilemakc/mbflow/internal/application/engine"
	"github.com/smilemakc/mbflow/internal/domain/repository"
	storagemodels "github.com/smilemakc/mbflow/internal/infrastructure/storage/models"
	"github.com/smilemakc/mbflow/pkg/models"
)

// Router implements the two-phase trigger match: a coarse lookup on
// (subtype, index_key, deployment_status) narrows the trigger_index table
// down to a handful of candidates, then each candidate's detailed filter is
// evaluated in-process against the event. Routing itself is pure — starting
// or resuming an execution is the caller's job, done through Dispatch.
type Router struct {
	indexRepo     repository.TriggerIndexRepository
	executionRepo repository.ExecutionRepository
	executionMgr  *engine.ExecutionManager
}

// RouterConfig configures a Router.
type RouterConfig struct {
	TriggerIndexRepo repository.TriggerIndexRepository
	ExecutionRepo    repository.ExecutionRepository
	ExecutionMgr     *engine.ExecutionManager
}

// NewRouter creates a Router. TriggerIndexRepo nil means Route always
// misses; ExecutionRepo nil means Dispatch never tries to resume and
// always starts a fresh execution.
func NewRouter(cfg RouterConfig) *Router {
	return &Router{
		indexRepo:     cfg.TriggerIndexRepo,
		executionRepo: cfg.ExecutionRepo,
		executionMgr:  cfg.ExecutionMgr,
	}
}

// TriggerMatch is one trigger_index row that survived both routing phases.
type TriggerMatch struct {
	TriggerID  string
	WorkflowID string
	Entry      *storagemodels.TriggerIndexModel
}

// Route runs both matching phases for an inbound event. subtype and
// event.IndexKey together form the coarse key; every row sharing it is
// then checked against its stored detailed filter.
func (r *Router) Route(ctx context.Context, subtype string, event *models.RawEvent) ([]TriggerMatch, error) {
	if r.indexRepo == nil {
		return nil, nil
	}

	candidates, err := r.indexRepo.FindCandidates(ctx, strings.ToUpper(subtype), event.IndexKey, "deployed")
	if err != nil {
		return nil, fmt.Errorf("failed to find trigger index candidates: %w", err)
	}

	matches := make([]TriggerMatch, 0, len(candidates))
	for _, entry := range candidates {
		if !matchesDetailedFilter(entry.Subtype, map[string]interface{}(entry.DetailedFilter), event) {
			continue
		}
		matches = append(matches, TriggerMatch{
			TriggerID:  entry.TriggerID.String(),
			WorkflowID: entry.WorkflowID.String(),
			Entry:      entry,
		})
	}

	return matches, nil
}

// Dispatch executes every matched trigger's workflow, one execution or
// resume per match. It keeps going past a single failure so one bad
// workflow doesn't block the rest of the fan-out; the first error (if any)
// is returned alongside whatever executions did succeed.
func (r *Router) Dispatch(ctx context.Context, matches []TriggerMatch, payload map[string]interface{}) ([]*models.Execution, error) {
	executions := make([]*models.Execution, 0, len(matches))
	var firstErr error

	for _, match := range matches {
		execution, err := r.dispatchOne(ctx, match, payload)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to dispatch trigger %s: %w", match.TriggerID, err)
			}
			continue
		}
		executions = append(executions, execution)
	}

	return executions, firstErr
}

func (r *Router) dispatchOne(ctx context.Context, match TriggerMatch, payload map[string]interface{}) (*models.Execution, error) {
	resumed, err := r.tryResume(ctx, match, payload)
	if err != nil {
		return nil, err
	}
	if resumed != nil {
		return resumed, nil
	}

	return r.executionMgr.Execute(ctx, match.WorkflowID, payload, nil)
}

// tryResume looks for the most recently paused execution of the matched
// workflow and resumes it instead of starting a new one (smart resume): a
// reply to a HIL prompt routes back into the run that asked for it rather
// than kicking off a duplicate. Returns (nil, nil) when there's nothing to
// resume, which tells dispatchOne to start fresh.
func (r *Router) tryResume(ctx context.Context, match TriggerMatch, payload map[string]interface{}) (*models.Execution, error) {
	if r.executionRepo == nil || r.executionMgr == nil {
		return nil, nil
	}

	workflowUUID, err := uuid.Parse(match.WorkflowID)
	if err != nil {
		return nil, fmt.Errorf("invalid workflow ID %q: %w", match.WorkflowID, err)
	}

	paused, err := mostRecentPause(ctx, r.executionRepo, workflowUUID)
	if err != nil {
		return nil, err
	}
	if paused == nil {
		return nil, nil
	}

	nodeID, err := waitingNodeID(paused)
	if err != nil {
		// Paused but with no recorded waiting node: fall back to a fresh run
		// rather than failing the whole dispatch.
		return nil, nil
	}

	return r.executionMgr.ResumeExecution(ctx, paused.ID.String(), nodeID, payload, nil)
}

// mostRecentPause checks the waiting_for_human then paused statuses in
// turn, returning the first (most recently started) open execution found.
func mostRecentPause(ctx context.Context, repo repository.ExecutionRepository, workflowID uuid.UUID) (*storagemodels.ExecutionModel, error) {
	for _, status := range []string{"waiting_for_human", "paused"} {
		found, err := repo.FindByWorkflowIDAndStatus(ctx, workflowID, status, 1, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to look up paused executions: %w", err)
		}
		if len(found) > 0 {
			return found[0], nil
		}
	}
	return nil, nil
}

// waitingNodeID finds the node still in NodeExecutionStatusWaiting on a
// paused execution, returned as its storage UUID — ResumeExecution accepts
// either that or the logical node ID.
func waitingNodeID(execution *storagemodels.ExecutionModel) (string, error) {
	for _, ne := range execution.NodeExecutions {
		if ne.Status == string(models.NodeExecutionStatusWaiting) {
			return ne.NodeID.String(), nil
		}
	}
	return "", fmt.Errorf("execution %s has no node waiting for input", execution.ID)
}
