package agentground

import (
	"context"
	"iter"
)

// Version is the agent implementation version reported to MCP servers.
const Version = "0.1.0"

// Agent drives a multi-turn conversation between a chat model and the tools
// of the configured MCP servers.
//
// Lifecycle: agents are single-use. After Close, create a new agent with
// NewAgent.
//
// Example usage:
//
//	agent := NewAgent()
//	defer agent.Close()
//
//	err := agent.Start(ctx,
//	    WithServer("toolbox", &SSEServerConfig{URL: "http://localhost:9000/sse"}),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := agent.Run(ctx, "Add 2 and 2.")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Output)
type Agent interface {
	// Start connects to all configured MCP servers and discovers their
	// tools. Must be called before any other method. Returns
	// ErrNoServers when no server is configured and a ConnectionError
	// when any server cannot be reached.
	Start(ctx context.Context, opts ...Option) error

	// Run sends a user prompt through the tool-call loop and returns the
	// final result. Conversation history is kept across calls.
	Run(ctx context.Context, prompt string) (*RunResult, error)

	// RunStream is like Run but yields events as the run progresses.
	// The iterator ends with a DoneEvent on success; errors are yielded
	// inline and terminate the run.
	RunStream(ctx context.Context, prompt string) iter.Seq2[Event, error]

	// Tools lists the tools discovered across all connected servers,
	// sorted by qualified name.
	Tools() []ToolInfo

	// CallTool invokes a tool directly, bypassing the model. The name is
	// the qualified "<server>__<tool>" form.
	CallTool(ctx context.Context, qualifiedName string, args map[string]any) (*ToolCallRecord, error)

	// ReadResource reads a resource from the named server.
	ReadResource(ctx context.Context, server, uri string) (string, error)

	// SubscribeResource subscribes to update notifications for a resource
	// on the named server. Updates surface as ResourceUpdatedEvents on
	// streaming runs.
	SubscribeResource(ctx context.Context, server, uri string) error

	// Close disconnects from all servers. Safe to call multiple times.
	Close() error
}

// NewAgent creates a new agent.
//
// Call Start with options to connect:
//
//	agent := NewAgent()
//	err := agent.Start(ctx,
//	    WithServer("explorer", &HTTPServerConfig{URL: "http://localhost:9000/mcp"}),
//	    WithLogger(logger),
//	)
func NewAgent() Agent {
	return newAgentImpl()
}
