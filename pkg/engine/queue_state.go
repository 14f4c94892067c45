package engine

// DeliverInput records a value arriving at a node's named input port and
// reports whether the node has now received every port a readiness check
// needs (the caller supplies requiredPorts, derived from the node's inbound
// edges, since ExecutionState has no notion of the DAG shape itself).
func (es *ExecutionState) DeliverInput(nodeID, port string, value interface{}, requiredPorts []string) bool {
	es.mu.Lock()
	defer es.mu.Unlock()

	bucket, ok := es.PendingInputs[nodeID]
	if !ok {
		bucket = make(map[string]interface{})
		es.PendingInputs[nodeID] = bucket
	}
	bucket[port] = value

	for _, p := range requiredPorts {
		if _, have := bucket[p]; !have {
			return false
		}
	}
	return true
}

// ConsumePendingInputs returns and clears the accumulated ports for a node,
// merging them into a single flat map the way the teacher's
// mergeParentOutputs does for multi-parent nodes.
func (es *ExecutionState) ConsumePendingInputs(nodeID string) map[string]interface{} {
	es.mu.Lock()
	defer es.mu.Unlock()
	bucket := es.PendingInputs[nodeID]
	delete(es.PendingInputs, nodeID)
	if bucket == nil {
		return map[string]interface{}{}
	}
	out := make(map[string]interface{}, len(bucket))
	for k, v := range bucket {
		out[k] = v
	}
	return out
}

// MarkExecuted records that a node (or one fan-out activation of it) has
// run, and IsExecuted reports whether it already has — both the guard
// against re-queuing an already-completed item.
func (es *ExecutionState) MarkExecuted(nodeID, activationID string) {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.Executed[execKey(nodeID, activationID)] = true
}

func (es *ExecutionState) IsExecuted(nodeID, activationID string) bool {
	es.mu.RLock()
	defer es.mu.RUnlock()
	return es.Executed[execKey(nodeID, activationID)]
}

// UnmarkExecuted clears the executed flag for a node/activation pair, used
// when a loop fires and resets a wave range for re-execution.
func (es *ExecutionState) UnmarkExecuted(nodeID, activationID string) {
	es.mu.Lock()
	defer es.mu.Unlock()
	delete(es.Executed, execKey(nodeID, activationID))
}

// Enqueue appends an item to the work queue.
func (es *ExecutionState) Enqueue(item QueueItem) {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.Queue = append(es.Queue, item)
}

// Dequeue pops the next item, FIFO, reporting false when the queue is empty.
func (es *ExecutionState) Dequeue() (QueueItem, bool) {
	es.mu.Lock()
	defer es.mu.Unlock()
	if len(es.Queue) == 0 {
		return QueueItem{}, false
	}
	item := es.Queue[0]
	es.Queue = es.Queue[1:]
	return item, true
}

// QueueLen reports how many items are waiting, used to detect deadlock
// (queue empty, pending HIL interactions none, but not all nodes executed).
func (es *ExecutionState) QueueLen() int {
	es.mu.RLock()
	defer es.mu.RUnlock()
	return len(es.Queue)
}

// Snapshot captures everything needed to resume a paused execution: the
// remaining queue, the accumulated-but-not-yet-consumed pending inputs, the
// executed set, node outputs, and variables. It becomes the pause_context
// persisted by workflow_execution_pauses (§6.3).
func (es *ExecutionState) Snapshot() map[string]interface{} {
	es.mu.RLock()
	defer es.mu.RUnlock()

	pending := make(map[string]map[string]interface{}, len(es.PendingInputs))
	for k, v := range es.PendingInputs {
		cp := make(map[string]interface{}, len(v))
		for pk, pv := range v {
			cp[pk] = pv
		}
		pending[k] = cp
	}
	executed := make(map[string]bool, len(es.Executed))
	for k, v := range es.Executed {
		executed[k] = v
	}
	outputs := make(map[string]interface{}, len(es.NodeOutputs))
	for k, v := range es.NodeOutputs {
		outputs[k] = v
	}
	variables := make(map[string]interface{}, len(es.Variables))
	for k, v := range es.Variables {
		variables[k] = v
	}
	queue := make([]QueueItem, len(es.Queue))
	copy(queue, es.Queue)

	return map[string]interface{}{
		"pending_inputs": pending,
		"executed":       executed,
		"node_outputs":   outputs,
		"variables":      variables,
		"queue":          queue,
	}
}

// Restore repopulates an ExecutionState from a Snapshot produced earlier in
// this process's lifetime (same Go types, no JSON round trip needed — the
// JSON-shaped version for cross-process resume lives in pause.go).
func (es *ExecutionState) Restore(snap map[string]interface{}) {
	es.mu.Lock()
	defer es.mu.Unlock()

	if pending, ok := snap["pending_inputs"].(map[string]map[string]interface{}); ok {
		es.PendingInputs = pending
	}
	if executed, ok := snap["executed"].(map[string]bool); ok {
		es.Executed = executed
	}
	if outputs, ok := snap["node_outputs"].(map[string]interface{}); ok {
		es.NodeOutputs = outputs
	}
	if variables, ok := snap["variables"].(map[string]interface{}); ok {
		es.Variables = variables
	}
	if queue, ok := snap["queue"].([]QueueItem); ok {
		es.Queue = queue
	}
}
