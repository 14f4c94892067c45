package engine

import (
	"encoding/json"
	"errors"

	"github.com/smilemakc/mbflow/pkg/models"
)

// ErrExecutionPaused is returned by DAGExecutor.Execute when the work queue
// drained with one or more nodes still waiting (HIL or a long timer) rather
// than because the workflow finished. Pauses are collected in NodePause
// values the caller can persist to workflow_execution_pauses/hil_interactions.
var ErrExecutionPaused = errors.New("execution paused")

// NodePause is one node's pending suspension, carrying everything a resume
// needs: which node (and fan-out sibling) paused, the HIL interaction it's
// waiting on (nil for a plain timer pause), and the state snapshot to
// restore before resuming.
type NodePause struct {
	NodeID       string
	ActivationID string
	Interaction  *models.HILInteraction
	Context      *PauseContext
}

// PauseContext is the JSON-serializable form of an ExecutionState.Snapshot,
// shaped to ride in the workflow_execution_pauses.pause_context column
// (§6.3) and survive a process restart — unlike Snapshot/Restore, which
// keep Go-native types for same-process pause/resume, this type round-trips
// through json.Marshal/Unmarshal so QueueItem and map values come back in
// their JSON shapes.
type PauseContext struct {
	NodeID        string                            `json:"node_id"`
	PendingInputs map[string]map[string]interface{} `json:"pending_inputs"`
	Executed      map[string]bool                   `json:"executed"`
	NodeOutputs   map[string]interface{}             `json:"node_outputs"`
	Variables     map[string]interface{}             `json:"variables"`
	Queue         []QueueItem                        `json:"queue"`
}

// Pause captures the engine's state at the node that triggered a pause
// (a HUMAN_IN_THE_LOOP wait or an operator-issued Pause call).
func (es *ExecutionState) Pause(nodeID string) *PauseContext {
	snap := es.Snapshot()
	pc := &PauseContext{NodeID: nodeID}
	if v, ok := snap["pending_inputs"].(map[string]map[string]interface{}); ok {
		pc.PendingInputs = v
	}
	if v, ok := snap["executed"].(map[string]bool); ok {
		pc.Executed = v
	}
	if v, ok := snap["node_outputs"].(map[string]interface{}); ok {
		pc.NodeOutputs = v
	}
	if v, ok := snap["variables"].(map[string]interface{}); ok {
		pc.Variables = v
	}
	if v, ok := snap["queue"].([]QueueItem); ok {
		pc.Queue = v
	}
	return pc
}

// Resume applies a PauseContext back onto an ExecutionState, e.g. one
// rebuilt by RestoreFromCheckpoint after a process restart.
func (es *ExecutionState) Resume(pc *PauseContext) {
	es.mu.Lock()
	defer es.mu.Unlock()
	if pc.PendingInputs != nil {
		es.PendingInputs = pc.PendingInputs
	}
	if pc.Executed != nil {
		es.Executed = pc.Executed
	}
	if pc.NodeOutputs != nil {
		es.NodeOutputs = pc.NodeOutputs
	}
	if pc.Variables != nil {
		es.Variables = pc.Variables
	}
	if pc.Queue != nil {
		es.Queue = pc.Queue
	}
}

// MarshalJSON / UnmarshalJSON helpers for storing in a jsonb column.
func (pc *PauseContext) ToJSON() ([]byte, error)   { return json.Marshal(pc) }
func PauseContextFromJSON(b []byte) (*PauseContext, error) {
	var pc PauseContext
	if err := json.Unmarshal(b, &pc); err != nil {
		return nil, err
	}
	return &pc, nil
}
