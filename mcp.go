package agentground

import (
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ServerType represents the transport type of an MCP server.
type ServerType string

const (
	// ServerTypeStdio runs the server as a subprocess and speaks MCP over
	// its stdin/stdout.
	ServerTypeStdio ServerType = "stdio"
	// ServerTypeSSE connects to a server over the legacy HTTP+SSE transport.
	ServerTypeSSE ServerType = "sse"
	// ServerTypeHTTP connects to a server over the streamable HTTP transport.
	ServerTypeHTTP ServerType = "http"
)

// ServerConfig is the interface for MCP server configurations.
type ServerConfig interface {
	GetType() ServerType
}

// Compile-time verification that all server config types implement ServerConfig.
var (
	_ ServerConfig = (*StdioServerConfig)(nil)
	_ ServerConfig = (*SSEServerConfig)(nil)
	_ ServerConfig = (*HTTPServerConfig)(nil)
)

// StdioServerConfig configures a stdio-based MCP server.
type StdioServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// GetType implements ServerConfig.
func (c *StdioServerConfig) GetType() ServerType { return ServerTypeStdio }

// SSEServerConfig configures a server reached over HTTP+SSE.
type SSEServerConfig struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

// GetType implements ServerConfig.
func (c *SSEServerConfig) GetType() ServerType { return ServerTypeSSE }

// HTTPServerConfig configures a server reached over streamable HTTP.
type HTTPServerConfig struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

// GetType implements ServerConfig.
func (c *HTTPServerConfig) GetType() ServerType { return ServerTypeHTTP }

// transportFor maps a ServerConfig to an MCP client transport.
func transportFor(cfg ServerConfig, base *http.Client) (mcp.Transport, error) {
	switch c := cfg.(type) {
	case *StdioServerConfig:
		if c.Command == "" {
			return nil, fmt.Errorf("stdio server config requires a command")
		}
		cmd := exec.Command(c.Command, c.Args...)
		cmd.Env = os.Environ()
		for k, v := range c.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
		return &mcp.CommandTransport{Command: cmd}, nil
	case *SSEServerConfig:
		if c.URL == "" {
			return nil, fmt.Errorf("sse server config requires a URL")
		}
		return &mcp.SSEClientTransport{
			Endpoint:   c.URL,
			HTTPClient: clientWithHeaders(base, c.Headers),
		}, nil
	case *HTTPServerConfig:
		if c.URL == "" {
			return nil, fmt.Errorf("http server config requires a URL")
		}
		return &mcp.StreamableClientTransport{
			Endpoint:   c.URL,
			HTTPClient: clientWithHeaders(base, c.Headers),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported server config type %T", cfg)
	}
}

// headerRoundTripper injects static headers into every outgoing request.
type headerRoundTripper struct {
	headers map[string]string
	next    http.RoundTripper
}

func (rt *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for k, v := range rt.headers {
		clone.Header.Set(k, v)
	}
	return rt.next.RoundTrip(clone)
}

// clientWithHeaders returns base extended with static request headers.
// The base client is never mutated.
func clientWithHeaders(base *http.Client, headers map[string]string) *http.Client {
	if base == nil {
		base = http.DefaultClient
	}
	if len(headers) == 0 {
		return base
	}
	next := base.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	clone := *base
	clone.Transport = &headerRoundTripper{headers: headers, next: next}
	return &clone
}

// toolNameSeparator joins server and tool names into the qualified tool name
// presented to the model, e.g. "explorer__read_query".
const toolNameSeparator = "__"

// qualifyToolName builds the model-facing name for a server tool.
func qualifyToolName(server, tool string) string {
	return server + toolNameSeparator + tool
}

// splitToolName splits a qualified tool name back into server and tool.
func splitToolName(qualified string) (server, tool string, ok bool) {
	server, tool, ok = strings.Cut(qualified, toolNameSeparator)
	if !ok || server == "" || tool == "" {
		return "", "", false
	}
	return server, tool, true
}
