package agentground

import (
	"encoding/json"
	"time"
)

// ToolInfo describes a tool discovered on a connected MCP server.
type ToolInfo struct {
	// Server is the configured name of the owning MCP server.
	Server string
	// Name is the tool's name on its server.
	Name string
	// QualifiedName is the model-facing name, "<server>__<name>".
	QualifiedName string
	// Description is the tool description advertised by the server.
	Description string
	// InputSchema is the JSON Schema for the tool's arguments, as
	// advertised by the server.
	InputSchema any
}

// ToolCallRecord records a single tool invocation made during a run.
type ToolCallRecord struct {
	Server    string
	Tool      string
	Arguments json.RawMessage
	// Result is the concatenated text content returned by the tool.
	Result string
	// IsError reports whether the server flagged the result as an error.
	IsError bool
	// Duration is the wall-clock time of the invocation.
	Duration time.Duration
}

// Usage accumulates token usage across the model calls of a run.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

func (u *Usage) add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// RunResult is the outcome of a completed run.
type RunResult struct {
	// Output is the model's final text answer.
	Output string
	// ToolCalls lists every tool invocation made during the run, in order.
	ToolCalls []ToolCallRecord
	// Rounds is the number of model calls the run took.
	Rounds int
	// Usage is the accumulated token usage of the run.
	Usage Usage
}

// Event is the interface for events yielded by RunStream.
type Event interface {
	isEvent()
}

// Compile-time verification that all event types implement Event.
var (
	_ Event = (*TextEvent)(nil)
	_ Event = (*ToolCallEvent)(nil)
	_ Event = (*ToolResultEvent)(nil)
	_ Event = (*ResourceUpdatedEvent)(nil)
	_ Event = (*DoneEvent)(nil)
)

// TextEvent carries the model's final text answer.
type TextEvent struct {
	Text string
}

func (*TextEvent) isEvent() {}

// ToolCallEvent is emitted when the model requests a tool invocation.
type ToolCallEvent struct {
	Server    string
	Tool      string
	Arguments json.RawMessage
}

func (*ToolCallEvent) isEvent() {}

// ToolResultEvent is emitted when a tool invocation completes.
type ToolResultEvent struct {
	Server   string
	Tool     string
	Result   string
	IsError  bool
	Duration time.Duration
}

func (*ToolResultEvent) isEvent() {}

// ResourceUpdatedEvent is emitted when a subscribed resource changes on a
// connected server.
type ResourceUpdatedEvent struct {
	Server string
	URI    string
}

func (*ResourceUpdatedEvent) isEvent() {}

// DoneEvent is the final event of a run.
type DoneEvent struct {
	Rounds int
	Usage  Usage
}

func (*DoneEvent) isEvent() {}
