package registry

// NewBuiltin returns a Registry pre-populated with every (type, subtype)
// this repository ships a runner for, grounding the catalog in the set of
// executors registered by pkg/executor/builtin.RegisterBuiltins plus the
// trigger and flow-control subtypes the engine and scheduler understand
// natively.
func NewBuiltin() *Registry {
	r := New()
	for _, spec := range builtinSpecs {
		_ = r.Register(spec)
	}
	return r
}

var builtinSpecs = []*NodeSpec{
	{
		Type: "TRIGGER", Subtype: "MANUAL",
		Description: "Started explicitly via the control API.",
		Outputs:     []OutputPort{{Name: "payload"}},
	},
	{
		Type: "TRIGGER", Subtype: "CRON",
		Description: "Fires on a cron schedule.",
		Params: []ParamSchema{
			{Name: "expression", Kind: ParamKindString, Required: true, Description: "cron or @every expression"},
			{Name: "timezone", Kind: ParamKindString, Default: "UTC"},
		},
		Outputs: []OutputPort{{Name: "fired_at"}},
	},
	{
		Type: "TRIGGER", Subtype: "WEBHOOK",
		Description: "Fires on an inbound signed HTTP delivery.",
		Params: []ParamSchema{
			{Name: "secret_ref", Kind: ParamKindString, Required: true},
			{Name: "path_suffix", Kind: ParamKindString},
		},
		Outputs: []OutputPort{{Name: "headers"}, {Name: "body"}},
	},
	{
		Type: "TRIGGER", Subtype: "CHAT",
		Description: "Fires on an inbound chat message (Slack-shaped bot event).",
		Params: []ParamSchema{
			{Name: "channel", Kind: ParamKindString, Required: true},
		},
		Outputs: []OutputPort{{Name: "message"}, {Name: "sender"}},
	},
	{
		Type: "TRIGGER", Subtype: "GITHUB",
		Description: "Fires on a source-control webhook event.",
		Params: []ParamSchema{
			{Name: "repo", Kind: ParamKindString, Required: true},
			{Name: "event", Kind: ParamKindString, Required: true, OneOf: []string{"push", "pull_request", "issue_comment"}},
		},
		Outputs: []OutputPort{{Name: "event"}, {Name: "repository"}},
	},
	{
		Type: "TRIGGER", Subtype: "GOOGLE_CALENDAR",
		Description: "Fires when a watched calendar gets a new or changed event.",
		Params: []ParamSchema{
			{Name: "calendar_id", Kind: ParamKindString, Required: true},
		},
		Outputs: []OutputPort{{Name: "event"}},
	},
	{
		Type: "ACTION", Subtype: "HTTP_REQUEST",
		Description: "Issues an HTTP request.",
		Params: []ParamSchema{
			{Name: "url", Kind: ParamKindString, Required: true},
			{Name: "method", Kind: ParamKindString, Default: "GET", OneOf: []string{"GET", "POST", "PUT", "PATCH", "DELETE"}},
			{Name: "headers", Kind: ParamKindObject},
			{Name: "body", Kind: ParamKindObject},
			{Name: "timeout_ms", Kind: ParamKindNumber, Default: float64(30000)},
		},
		Outputs: []OutputPort{{Name: "status"}, {Name: "body"}, {Name: "headers"}},
	},
	{
		Type: "ACTION", Subtype: "DATA_TRANSFORMATION",
		Description: "Reshapes input via passthrough/template/expression/jq.",
		Params: []ParamSchema{
			{Name: "type", Kind: ParamKindString, Default: "passthrough", OneOf: []string{"passthrough", "template", "expression", "jq"}},
			{Name: "expression", Kind: ParamKindExpr},
			{Name: "filter", Kind: ParamKindString},
			{Name: "template", Kind: ParamKindString},
		},
		Outputs: []OutputPort{{Name: "result"}},
	},
	{
		Type: "EXTERNAL_ACTION", Subtype: "CHAT_SEND",
		Description: "Sends a message to a chat channel.",
		Params: []ParamSchema{
			{Name: "channel", Kind: ParamKindString, Required: true},
			{Name: "text", Kind: ParamKindString, Required: true},
		},
		Outputs: []OutputPort{{Name: "message_id"}},
	},
	{
		Type: "EXTERNAL_ACTION", Subtype: "SOURCE_CONTROL_COMMENT",
		Description: "Posts a comment on a source-control issue or PR.",
		Params: []ParamSchema{
			{Name: "repo", Kind: ParamKindString, Required: true},
			{Name: "number", Kind: ParamKindNumber, Required: true},
			{Name: "body", Kind: ParamKindString, Required: true},
		},
		Outputs: []OutputPort{{Name: "comment_id"}},
	},
	{
		Type: "EXTERNAL_ACTION", Subtype: "DOCS_READ",
		Description: "Reads a document from a docs provider.",
		Params: []ParamSchema{
			{Name: "document_id", Kind: ParamKindString, Required: true},
		},
		Outputs: []OutputPort{{Name: "content"}},
	},
	{
		Type: "EXTERNAL_ACTION", Subtype: "DOCS_WRITE",
		Description: "Appends content to a document.",
		Params: []ParamSchema{
			{Name: "document_id", Kind: ParamKindString, Required: true},
			{Name: "content", Kind: ParamKindString, Required: true},
		},
		Outputs: []OutputPort{{Name: "revision_id"}},
	},
	{
		Type: "EXTERNAL_ACTION", Subtype: "CALENDAR_READ",
		Description: "Lists events on a calendar in a window.",
		Params: []ParamSchema{
			{Name: "calendar_id", Kind: ParamKindString, Required: true},
			{Name: "from", Kind: ParamKindString},
			{Name: "to", Kind: ParamKindString},
		},
		Outputs: []OutputPort{{Name: "events"}},
	},
	{
		Type: "EXTERNAL_ACTION", Subtype: "SCRAPE_URL",
		Description: "Fetches a URL and extracts readable content.",
		Params: []ParamSchema{
			{Name: "url", Kind: ParamKindString, Required: true},
		},
		Outputs: []OutputPort{{Name: "title"}, {Name: "text"}},
	},
	{
		Type: "FLOW", Subtype: "IF",
		Description: "Branches on a boolean expression.",
		Params: []ParamSchema{
			{Name: "condition", Kind: ParamKindExpr, Required: true},
		},
		Outputs: []OutputPort{{Name: "true"}, {Name: "false"}},
	},
	{
		Type: "FLOW", Subtype: "MERGE",
		Description: "Waits on multiple inbound ports before continuing.",
		Params: []ParamSchema{
			{Name: "merge_strategy", Kind: ParamKindString, Default: "all", OneOf: []string{"all", "any"}},
		},
		Outputs: []OutputPort{{Name: "result"}},
	},
	{
		Type: "FLOW", Subtype: "FOR_EACH",
		Description: "Fans an array out into one sibling activation per element.",
		Params: []ParamSchema{
			{Name: "items", Kind: ParamKindExpr, Required: true},
		},
		Outputs: []OutputPort{{Name: "iteration"}},
	},
	{
		Type: "FLOW", Subtype: "LOOP",
		Description: "Bounded back-edge re-execution of a wave range (teacher's loop-edge mechanism).",
		Params: []ParamSchema{
			{Name: "max_iterations", Kind: ParamKindNumber, Required: true},
		},
		Outputs: []OutputPort{{Name: "result"}},
	},
	{
		Type: "FLOW", Subtype: "WAIT",
		Description: "Delays for a fixed duration before continuing.",
		Params: []ParamSchema{
			{Name: "duration_ms", Kind: ParamKindNumber, Required: true},
		},
		Outputs: []OutputPort{{Name: "result"}},
	},
	{
		Type: "HUMAN_IN_THE_LOOP", Subtype: "APPROVAL",
		Description: "Pauses for a yes/no human decision.",
		Params: []ParamSchema{
			{Name: "prompt", Kind: ParamKindString, Required: true},
			{Name: "timeout_seconds", Kind: ParamKindNumber},
		},
		Outputs: []OutputPort{{Name: "approved"}, {Name: "responded_by"}},
	},
	{
		Type: "HUMAN_IN_THE_LOOP", Subtype: "INPUT",
		Description: "Pauses for free-form human input.",
		Params: []ParamSchema{
			{Name: "prompt", Kind: ParamKindString, Required: true},
			{Name: "timeout_seconds", Kind: ParamKindNumber},
		},
		Outputs: []OutputPort{{Name: "value"}},
	},
	{
		Type: "HUMAN_IN_THE_LOOP", Subtype: "SELECTION",
		Description: "Pauses for a human to pick from a fixed option list.",
		Params: []ParamSchema{
			{Name: "prompt", Kind: ParamKindString, Required: true},
			{Name: "options", Kind: ParamKindArray, Required: true},
			{Name: "timeout_seconds", Kind: ParamKindNumber},
		},
		Outputs: []OutputPort{{Name: "selected"}},
	},
	{
		Type: "HUMAN_IN_THE_LOOP", Subtype: "REVIEW",
		Description: "Pauses for a human to annotate/edit a payload before it continues.",
		Params: []ParamSchema{
			{Name: "prompt", Kind: ParamKindString, Required: true},
			{Name: "timeout_seconds", Kind: ParamKindNumber},
		},
		Outputs: []OutputPort{{Name: "edited"}},
	},
	{
		Type: "HUMAN_IN_THE_LOOP", Subtype: "CONFIRMATION",
		Description: "Pauses for a human acknowledgement with no decision payload.",
		Params: []ParamSchema{
			{Name: "prompt", Kind: ParamKindString, Required: true},
			{Name: "timeout_seconds", Kind: ParamKindNumber},
		},
		Outputs: []OutputPort{{Name: "acknowledged"}},
	},
	{
		Type: "HUMAN_IN_THE_LOOP", Subtype: "CUSTOM",
		Description: "Pauses with an arbitrary schema defined by the workflow author.",
		Params: []ParamSchema{
			{Name: "prompt", Kind: ParamKindString, Required: true},
			{Name: "schema", Kind: ParamKindObject},
			{Name: "timeout_seconds", Kind: ParamKindNumber},
		},
		Outputs: []OutputPort{{Name: "response"}},
	},
	{
		Type: "AI_AGENT", Subtype: "CHAT",
		Description: "Runs an LLM conversation turn, optionally invoking attached TOOL nodes.",
		Params: []ParamSchema{
			{Name: "provider", Kind: ParamKindString, Required: true},
			{Name: "model", Kind: ParamKindString, Required: true},
			{Name: "system_prompt", Kind: ParamKindString},
			{Name: "max_tool_iterations", Kind: ParamKindNumber, Default: float64(5)},
		},
		Outputs: []OutputPort{{Name: "message"}, {Name: "tokens_used"}},
	},
	{
		Type: "TOOL", Subtype: "FUNCTION",
		Description: "A callable function schema attached to an AI_AGENT node.",
		Attachable:  true,
		Params: []ParamSchema{
			{Name: "name", Kind: ParamKindString, Required: true},
			{Name: "parameters", Kind: ParamKindObject, Required: true},
			{Name: "runner_type", Kind: ParamKindString, Required: true, Description: "type/subtype this tool delegates to when invoked"},
		},
	},
	{
		Type: "MEMORY", Subtype: "BUFFER",
		Description: "A bounded conversation-history buffer attached to an AI_AGENT node.",
		Attachable: true,
		Params: []ParamSchema{
			{Name: "max_messages", Kind: ParamKindNumber, Default: float64(20)},
		},
	},
}
