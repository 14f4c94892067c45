package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smilemakc/mbflow/pkg/models"
)

// Execute runs a workflow from its current ExecutionState to completion, to
// a terminal failure, or to a pause. Work flows through a FIFO queue of
// item{node_id, override_inputs?, activation_id?} (§4.2.2): a node becomes
// eligible the moment its own regular parents have finished, independent of
// what the rest of the graph is doing, so one branch pausing on a
// HUMAN_IN_THE_LOOP node never blocks an independently ready sibling.
//
// A fresh ExecutionState (empty Queue) is seeded from its zero-indegree
// nodes; a resumed one keeps whatever Resume repopulated. The queue is
// drained until empty; if draining stops because one or more nodes paused
// rather than because the workflow finished, Execute returns
// ErrExecutionPaused and the caller recovers the pauses via execState.Pauses.
func (de *DAGExecutor) Execute(ctx context.Context, execState *ExecutionState, opts *ExecutionOptions) error {
	if execState.Workflow == nil {
		return fmt.Errorf("execution state has no workflow")
	}

	dag := BuildDAG(execState.Workflow)
	remaining := computeRemaining(execState, dag)

	if execState.QueueLen() == 0 {
		for _, node := range execState.Workflow.Nodes {
			if node.IsAttachable() {
				continue
			}
			if remaining[node.ID] == 0 && !execState.IsExecuted(node.ID, "") {
				execState.Enqueue(QueueItem{NodeID: node.ID})
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("execution cancelled: %w", ctx.Err())
		default:
		}

		item, ok := execState.Dequeue()
		if !ok {
			break
		}

		node := FindNodeByID(execState.Workflow.Nodes, item.NodeID)
		if node == nil || execState.IsExecuted(item.NodeID, item.ActivationID) {
			continue
		}

		should, reason := de.shouldExecuteNode(execState, node)
		if !should {
			execState.SetNodeStatus(node.ID, models.NodeExecutionStatusSkipped)
			execState.MarkExecuted(item.NodeID, item.ActivationID)
			de.safeNotify(ctx, ExecutionEvent{
				Type:         EventTypeNodeSkipped,
				ExecutionID:  execState.ExecutionID,
				WorkflowID:   execState.WorkflowID,
				Timestamp:    time.Now(),
				Status:       "skipped",
				NodeID:       node.ID,
				NodeName:     node.Name,
				NodeType:     node.Type,
				Message:      reason,
				ActivationID: item.ActivationID,
			})
			de.propagate(ctx, execState, dag, remaining, node, item.ActivationID)
			continue
		}

		if node.Type == NodeTypeSubWorkflow {
			if err := de.executeSubWorkflow(ctx, execState, node, opts); err != nil {
				if !opts.ContinueOnError {
					return err
				}
				continue
			}
			de.propagate(ctx, execState, dag, remaining, node, item.ActivationID)
			continue
		}

		nodeCtx := de.buildNodeContext(execState, node, opts, item)
		result, err := de.executeNode(ctx, execState, node, nodeCtx, opts)
		if err != nil {
			if !opts.ContinueOnError {
				return err
			}
			continue
		}

		outMap, isMap := result.Output.(map[string]interface{})

		if isMap {
			if failed, failErr := checkControlSuccess(node, outMap); failed {
				execState.SetNodeError(node.ID, failErr)
				execState.SetNodeStatus(node.ID, models.NodeExecutionStatusFailed)
				execState.SetNodeEndTime(node.ID, time.Now())
				return failErr
			}

			if hilWait, _ := outMap[ControlKeyHILWait].(bool); hilWait {
				execState.Pauses = append(execState.Pauses, de.pauseForHIL(ctx, execState, node, item, outMap))
				continue
			}

			paused, err := de.handleTimerControl(ctx, execState, node, item, outMap)
			if err != nil {
				return err
			}
			if paused {
				continue
			}
		}

		finalOutput := result.Output
		if isMap {
			finalOutput = stripControlKeys(outMap)
		}

		execState.SetNodeOutput(node.ID, finalOutput)
		execState.SetNodeStatus(node.ID, models.NodeExecutionStatusCompleted)
		execState.SetNodeEndTime(node.ID, time.Now())
		execState.MarkExecuted(item.NodeID, item.ActivationID)

		de.safeNotify(ctx, ExecutionEvent{
			Type:         EventTypeNodeCompleted,
			ExecutionID:  execState.ExecutionID,
			WorkflowID:   execState.WorkflowID,
			Timestamp:    time.Now(),
			Status:       "completed",
			NodeID:       node.ID,
			NodeName:     node.Name,
			NodeType:     node.Type,
			Output:       finalOutput,
			ActivationID: item.ActivationID,
		})

		de.propagate(ctx, execState, dag, remaining, node, item.ActivationID)
	}

	if len(execState.Pauses) > 0 {
		return ErrExecutionPaused
	}
	return nil
}

// computeRemaining derives, per node, how many of its regular parents have
// yet to finish (complete or skip). Nodes already in the Executed set need
// nothing recomputed; everything else is the count of its incoming edges
// whose source hasn't finished yet. Used both to seed a fresh run and to
// rebuild bookkeeping after a resume, where the original in-memory counters
// from the paused run are gone.
func computeRemaining(execState *ExecutionState, dag *DAG) map[string]int {
	remaining := make(map[string]int, len(dag.Nodes))
	for id := range dag.Nodes {
		if execState.IsExecuted(id, "") {
			remaining[id] = 0
			continue
		}
		count := 0
		for _, edge := range dag.Index.EdgesByTarget[id] {
			if !execState.IsExecuted(edge.From, "") {
				count++
			}
		}
		remaining[id] = count
	}
	return remaining
}

// buildNodeContext resolves what a node sees as its input for this run: an
// explicit QueueItem override (a fan-out sibling's own slice), a loop input
// left by a just-fired loop edge (cleared once consumed so a later, non-loop
// re-entry doesn't see stale data), or else the ordinary parent-output merge.
func (de *DAGExecutor) buildNodeContext(execState *ExecutionState, node *models.Node, opts *ExecutionOptions, item QueueItem) *NodeContext {
	if item.OverrideInput != nil {
		return &NodeContext{
			ExecutionID:        execState.ExecutionID,
			NodeID:             node.ID,
			Node:               node,
			WorkflowVariables:  execState.Workflow.Variables,
			ExecutionVariables: execState.Variables,
			DirectParentOutput: item.OverrideInput,
			Resources:          execState.Resources,
			StrictMode:         opts.StrictMode,
		}
	}

	if loopInput, ok := execState.GetLoopInput(node.ID); ok {
		execState.ClearLoopInput(node.ID)
		direct, ok := loopInput.(map[string]interface{})
		if !ok {
			direct = map[string]interface{}{"value": loopInput}
		}
		return &NodeContext{
			ExecutionID:        execState.ExecutionID,
			NodeID:             node.ID,
			Node:               node,
			WorkflowVariables:  execState.Workflow.Variables,
			ExecutionVariables: execState.Variables,
			DirectParentOutput: direct,
			Resources:          execState.Resources,
			StrictMode:         opts.StrictMode,
		}
	}

	parentNodes := GetRegularParentNodes(execState.Workflow, node)
	return PrepareNodeContext(execState, node, parentNodes, opts)
}

// checkControlSuccess reports the node's control output declared success=false
// (§4.2.2e). A node may opt out of fail-fast by setting on_error: "continue"
// in its config, in which case the driver treats it like any other completion.
func checkControlSuccess(node *models.Node, outMap map[string]interface{}) (bool, error) {
	successVal, has := outMap[ControlKeySuccess]
	if !has {
		return false, nil
	}
	successBool, ok := successVal.(bool)
	if !ok || successBool {
		return false, nil
	}

	onError, _ := node.Config["on_error"].(string)
	if onError == "continue" {
		return false, nil
	}

	errMsg := fmt.Sprintf("node %s reported success=false", node.ID)
	if em, ok := outMap["error"].(string); ok && em != "" {
		errMsg = em
	}
	return true, fmt.Errorf("%s", errMsg)
}

// pauseForHIL suspends a node that set _hil_wait, recording a HILInteraction
// the caller persists to hil_interactions and a NodePause the caller persists
// to workflow_execution_pauses (§6.3). The driver does not commit the node's
// output or mark it executed: ResumeExecution does that once the human
// responds.
func (de *DAGExecutor) pauseForHIL(ctx context.Context, execState *ExecutionState, node *models.Node, item QueueItem, outMap map[string]interface{}) *NodePause {
	interactionID, _ := outMap[ControlKeyHILInteractionID].(string)
	if interactionID == "" {
		interactionID = uuid.New().String()
	}
	hilNodeID, _ := outMap[ControlKeyHILNodeID].(string)
	if hilNodeID == "" {
		hilNodeID = node.ID
	}
	prompt, _ := outMap["prompt"].(string)

	var expiresAt *time.Time
	if timeoutSeconds := toInt64(outMap[ControlKeyHILTimeoutSeconds]); timeoutSeconds > 0 {
		t := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
		expiresAt = &t
	}

	interaction := &models.HILInteraction{
		ID:          interactionID,
		ExecutionID: execState.ExecutionID,
		NodeID:      hilNodeID,
		Subtype:     strings.ToUpper(node.Subtype),
		Prompt:      prompt,
		Status:      models.HILInteractionStatusPending,
		CreatedAt:   time.Now(),
		ExpiresAt:   expiresAt,
	}

	pc := execState.Pause(hilNodeID)
	execState.SetNodeStatus(hilNodeID, models.NodeExecutionStatusWaiting)

	de.safeNotify(ctx, ExecutionEvent{
		Type:         EventTypeNodePaused,
		ExecutionID:  execState.ExecutionID,
		WorkflowID:   execState.WorkflowID,
		Timestamp:    time.Now(),
		Status:       "waiting_for_human",
		NodeID:       hilNodeID,
		NodeName:     node.Name,
		NodeType:     node.Type,
		ActivationID: item.ActivationID,
	})

	return &NodePause{
		NodeID:       hilNodeID,
		ActivationID: item.ActivationID,
		Interaction:  interaction,
		Context:      pc,
	}
}

// handleTimerControl implements _wait/_delay_ms (§4 suspension points): a
// delay within MaxSynchronousWait blocks the driver goroutine in place, same
// as outbound I/O and retry backoff; a longer one pauses like a HIL wait
// (with a nil Interaction, since no human response is needed, just the
// elapsed time) and lets the caller resume it via a timer instead.
func (de *DAGExecutor) handleTimerControl(ctx context.Context, execState *ExecutionState, node *models.Node, item QueueItem, outMap map[string]interface{}) (bool, error) {
	waitFlag, _ := outMap[ControlKeyWait].(bool)
	delayRaw, hasDelay := outMap[ControlKeyDelayMs]
	if !waitFlag && !hasDelay {
		return false, nil
	}

	delayMs := toInt64(delayRaw)
	if delayMs <= 0 {
		return false, nil
	}

	if delayMs <= MaxSynchronousWait {
		select {
		case <-time.After(time.Duration(delayMs) * time.Millisecond):
			return false, nil
		case <-ctx.Done():
			return false, fmt.Errorf("execution cancelled during wait: %w", ctx.Err())
		}
	}

	pc := execState.Pause(node.ID)
	execState.SetNodeStatus(node.ID, models.NodeExecutionStatusWaiting)
	de.safeNotify(ctx, ExecutionEvent{
		Type:         EventTypeNodePaused,
		ExecutionID:  execState.ExecutionID,
		WorkflowID:   execState.WorkflowID,
		Timestamp:    time.Now(),
		Status:       "waiting",
		NodeID:       node.ID,
		NodeName:     node.Name,
		NodeType:     node.Type,
		ActivationID: item.ActivationID,
	})
	execState.Pauses = append(execState.Pauses, &NodePause{NodeID: node.ID, ActivationID: item.ActivationID, Context: pc})
	return true, nil
}

// propagate advances the graph past a finished (or skipped) node. A node
// that sources one or more loop edges fires the nearest eligible one instead
// of its ordinary forward edges (§4.3, loop-over-forward priority), resetting
// the wave range between the loop's target and this node so it re-executes;
// once every loop edge from this node is exhausted, propagation falls
// through to the normal forward edges.
func (de *DAGExecutor) propagate(ctx context.Context, execState *ExecutionState, dag *DAG, remaining map[string]int, node *models.Node, activationID string) {
	if de.fireLoopEdges(ctx, execState, dag, remaining, node) {
		return
	}

	for _, edge := range dag.Index.EdgesBySource[node.ID] {
		if edge.OutputKey == models.OutputKeyIteration {
			de.fanOutIteration(execState, node, edge)
			continue
		}

		if activationID != "" {
			execState.Enqueue(QueueItem{NodeID: edge.To, ActivationID: activationID})
			continue
		}

		remaining[edge.To]--
		if remaining[edge.To] <= 0 && !execState.IsExecuted(edge.To, "") {
			execState.Enqueue(QueueItem{NodeID: edge.To})
		}
	}
}

// fireLoopEdges fires the first not-yet-exhausted loop edge sourced at node,
// reporting whether a loop actually fired so propagate can skip this node's
// forward edges for this round (the loop-iteration DAG wins over the forward
// DAG until MaxIterations is reached).
func (de *DAGExecutor) fireLoopEdges(ctx context.Context, execState *ExecutionState, dag *DAG, remaining map[string]int, node *models.Node) bool {
	fired := false
	for _, edge := range dag.LoopEdges {
		if edge.From != node.ID {
			continue
		}

		max := edge.Loop.MaxIterations
		iter := execState.GetLoopIteration(edge.ID)
		if iter >= max {
			de.safeNotify(ctx, ExecutionEvent{
				Type:          EventTypeLoopExhausted,
				ExecutionID:   execState.ExecutionID,
				WorkflowID:    execState.WorkflowID,
				Timestamp:     time.Now(),
				NodeID:        node.ID,
				LoopEdgeID:    edge.ID,
				LoopIteration: iter,
				LoopMaxIter:   max,
				Message:       fmt.Sprintf("loop %s exhausted after %d iterations", edge.ID, max),
			})
			continue
		}

		newIter := execState.IncrementLoopIteration(edge.ID)
		de.safeNotify(ctx, ExecutionEvent{
			Type:          EventTypeLoopIteration,
			ExecutionID:   execState.ExecutionID,
			WorkflowID:    execState.WorkflowID,
			Timestamp:     time.Now(),
			NodeID:        node.ID,
			LoopEdgeID:    edge.ID,
			LoopIteration: newIter,
			LoopMaxIter:   max,
		})

		sourceOutput, _ := execState.GetNodeOutput(node.ID)
		execState.SetLoopInput(edge.To, sourceOutput)
		de.resetLoopRange(execState, dag, remaining, edge.To, node.ID)
		execState.Enqueue(QueueItem{NodeID: edge.To})
		fired = true
	}
	return fired
}

// resetLoopRange clears executed/output state for every node on the wave
// range from the loop's target through the node that just fired it, and
// resets their remaining-parent counters so the normal forward-edge
// propagation can re-trigger them on this pass.
func (de *DAGExecutor) resetLoopRange(execState *ExecutionState, dag *DAG, remaining map[string]int, headID, tailID string) {
	waves, err := TopologicalSort(dag)
	if err != nil {
		return
	}
	startWave := findNodeWave(waves, headID)
	endWave := findNodeWave(waves, tailID)
	if startWave < 0 || endWave < 0 || startWave > endWave {
		return
	}
	for i := startWave; i <= endWave; i++ {
		for _, n := range waves[i] {
			execState.ResetNodeForLoop(n.ID)
			execState.UnmarkExecuted(n.ID, "")
			remaining[n.ID] = dag.InDegree[n.ID]
		}
	}
}

// fanOutIteration spawns one queue item per element of the array on an
// "iteration" output port, each with its own ActivationID so independent
// siblings pause independently (§4.2.2f). Single-hop only: the fan-out
// target's own descendants follow the ordinary activation-tagged routing in
// propagate above, not a second round of splitting. Graph-level fan-out
// mirrors sub_workflow's for_each in shape but stays minimal here since
// sub_workflow's self-contained child-execution fan-out is the primary path
// exercised by multi-item workflows.
func (de *DAGExecutor) fanOutIteration(execState *ExecutionState, node *models.Node, edge *models.Edge) {
	output, _ := execState.GetNodeOutput(node.ID)
	items, err := toSlice(output)
	if err != nil {
		return
	}

	port := edge.Port
	if port == "" {
		port = "item"
	}

	for _, item := range items {
		execState.Enqueue(QueueItem{
			NodeID:        edge.To,
			ActivationID:  uuid.New().String(),
			OverrideInput: map[string]interface{}{port: item},
		})
	}
}

// toInt64 normalizes the numeric types a control output's timeout/delay
// value might arrive as (config maps decode JSON numbers as float64, Go
// callers may pass int or int64 directly).
func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// stripControlKeys drops the leading-underscore control keys from a node's
// output map before it's committed as the node's visible output.
func stripControlKeys(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		if strings.HasPrefix(k, "_") {
			continue
		}
		out[k] = v
	}
	return out
}

// resolveHILOutput applies the HIL output-port-selection table (§4.2.3):
// APPROVAL splits on the human's approved flag, every other subtype routes
// to "completed" unless the response carries a timeout/filtered marker.
func resolveHILOutput(node *models.Node, interaction *models.HILInteraction, userResponse map[string]interface{}) (map[string]interface{}, string) {
	if userResponse == nil {
		userResponse = map[string]interface{}{}
	}

	if timedOut, _ := userResponse["timeout"].(bool); timedOut {
		return userResponse, HILPortTimeout
	}
	if filtered, _ := userResponse["filtered"].(bool); filtered {
		return userResponse, HILPortFiltered
	}

	subtype := strings.ToUpper(node.Subtype)
	if interaction != nil && interaction.Subtype != "" {
		subtype = strings.ToUpper(interaction.Subtype)
	}

	if subtype == HILSubtypeApproval {
		approved, _ := userResponse["approved"].(bool)
		if approved {
			return userResponse, HILPortApproved
		}
		return userResponse, HILPortRejected
	}

	return userResponse, HILPortCompleted
}

// ResumeExecution restores a paused execution from pause, resolves the HIL
// output port (or just applies the elapsed timer for a plain wait pause),
// commits the node's output, and drains the rest of the work queue. Callers
// look pause up from workflow_execution_pauses/hil_interactions (§6.3) and
// rebuild execState from the stored pause_context before calling this.
func (de *DAGExecutor) ResumeExecution(ctx context.Context, execState *ExecutionState, pause *NodePause, userResponse map[string]interface{}, opts *ExecutionOptions) error {
	if pause.Context != nil {
		execState.Resume(pause.Context)
	}

	node := FindNodeByID(execState.Workflow.Nodes, pause.NodeID)
	if node == nil {
		return fmt.Errorf("resume target node %s not found in workflow %s", pause.NodeID, execState.WorkflowID)
	}

	if pause.Interaction != nil {
		output, port := resolveHILOutput(node, pause.Interaction, userResponse)
		execState.SetNodeOutput(node.ID, output)
		execState.SetNodePort(node.ID, port)

		now := time.Now()
		pause.Interaction.Status = models.HILInteractionStatusResolved
		pause.Interaction.Response = userResponse
		pause.Interaction.ResolvedAt = &now
	} else if userResponse != nil {
		execState.SetNodeOutput(node.ID, userResponse)
	}

	execState.SetNodeStatus(node.ID, models.NodeExecutionStatusCompleted)
	execState.SetNodeEndTime(node.ID, time.Now())
	execState.MarkExecuted(pause.NodeID, pause.ActivationID)

	de.safeNotify(ctx, ExecutionEvent{
		Type:         EventTypeExecutionResumed,
		ExecutionID:  execState.ExecutionID,
		WorkflowID:   execState.WorkflowID,
		Timestamp:    time.Now(),
		NodeID:       node.ID,
		NodeName:     node.Name,
		NodeType:     node.Type,
		ActivationID: pause.ActivationID,
	})

	dag := BuildDAG(execState.Workflow)
	remaining := computeRemaining(execState, dag)
	de.propagate(ctx, execState, dag, remaining, node, pause.ActivationID)

	return de.Execute(ctx, execState, opts)
}
