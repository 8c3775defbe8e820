package agentground

import (
	"errors"
	"fmt"
)

// AgentError is the base interface for all errors produced by this package.
type AgentError interface {
	error
	IsAgentError() bool
}

// Compile-time verification that all error types implement AgentError.
var (
	_ AgentError = (*ConnectionError)(nil)
	_ AgentError = (*ToolError)(nil)
	_ AgentError = (*ModelError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrNotStarted indicates the agent has not been started yet.
	ErrNotStarted = errors.New("agent not started")

	// ErrAlreadyStarted indicates Start was called on a running agent.
	ErrAlreadyStarted = errors.New("agent already started")

	// ErrClosed indicates the agent has been closed and cannot be reused.
	ErrClosed = errors.New("agent closed: agents are single-use, create a new one with NewAgent()")

	// ErrNoServers indicates the agent was started without any MCP servers.
	ErrNoServers = errors.New("no MCP servers configured")

	// ErrMaxToolRounds indicates the run loop did not settle within the
	// configured number of tool rounds.
	ErrMaxToolRounds = errors.New("maximum tool rounds exceeded")

	// ErrUnknownServer indicates no configured server matches the given name.
	ErrUnknownServer = errors.New("unknown server")

	// ErrMissingAPIKey indicates no API key was configured for the default
	// model backend.
	ErrMissingAPIKey = errors.New("missing API key: set OPENAI_API_KEY or use WithAPIKey")
)

// ConnectionError indicates failure to connect to an MCP server.
type ConnectionError struct {
	Server string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to MCP server %q: %v", e.Server, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsAgentError implements AgentError.
func (e *ConnectionError) IsAgentError() bool { return true }

// ToolError indicates an MCP tool invocation failed at the protocol level.
// Tool-level failures reported by the server (IsError results) are returned
// to the model as tool output instead, so the run can continue.
type ToolError struct {
	Server string
	Tool   string
	Err    error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s on server %q failed: %v", e.Tool, e.Server, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// IsAgentError implements AgentError.
func (e *ToolError) IsAgentError() bool { return true }

// ModelError indicates the chat model backend returned an error.
type ModelError struct {
	Model string
	Err   error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("chat model %q failed: %v", e.Model, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// IsAgentError implements AgentError.
func (e *ModelError) IsAgentError() bool { return true }
