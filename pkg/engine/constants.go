package engine

// Source handle constants for conditional nodes
const (
	// SourceHandleTrue represents the "true" branch from a conditional node
	SourceHandleTrue = "true"

	// SourceHandleFalse represents the "false" branch from a conditional node
	SourceHandleFalse = "false"
)

// Node types
const (
	// NodeTypeConditional represents a conditional/branching node
	NodeTypeConditional = "conditional"
)

// Default configuration values
const (
	// DefaultMaxParallelism is the default maximum number of concurrent nodes per wave
	DefaultMaxParallelism = 10

	// DefaultNodePriority is the default priority for nodes without explicit priority
	DefaultNodePriority = 0
)

// Special control output keys a runner can set on its output map to divert
// the driver from ordinary propagation (§4.2.2e).
const (
	ControlKeyHILWait           = "_hil_wait"
	ControlKeyHILInteractionID  = "_hil_interaction_id"
	ControlKeyHILTimeoutSeconds = "_hil_timeout_seconds"
	ControlKeyHILNodeID         = "_hil_node_id"
	ControlKeyWait              = "_wait"
	ControlKeyDelayMs           = "_delay_ms"
	ControlKeySuccess           = "success"
)

// HIL interaction subtypes and the output ports §4.2.3's routing table maps
// them to.
const (
	HILSubtypeApproval     = "APPROVAL"
	HILSubtypeInput        = "INPUT"
	HILSubtypeSelection    = "SELECTION"
	HILSubtypeReview       = "REVIEW"
	HILSubtypeConfirmation = "CONFIRMATION"
	HILSubtypeCustom       = "CUSTOM"

	HILPortApproved = "approved"
	HILPortRejected = "rejected"
	HILPortCompleted = "completed"
	HILPortTimeout   = "timeout"
	HILPortFiltered  = "filtered"
)

// MaxSynchronousWait bounds how long the driver will block a _wait/_delay_ms
// control output in-process before treating it as fired; longer waits still
// honor the requested delay but are capped so one node can't starve the
// goroutine indefinitely within a single driver pass.
const MaxSynchronousWait = 60 * 1000 // milliseconds
