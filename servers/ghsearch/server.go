// Package ghsearch implements an MCP server for searching public GitHub
// users by login fragment and location.
package ghsearch

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/agentground/agentground/internal/mcptool"
	"github.com/agentground/agentground/internal/metrics"
)

// ServerName identifies this server to MCP clients.
const ServerName = "github-users"

// defaultPerPage is the search result count when the caller omits per_page.
const defaultPerPage = 5

// maxPerPage caps the search result count.
const maxPerPage = 30

// Server exposes GitHub user lookups as MCP tools.
type Server struct {
	client *Client
}

// NewServer creates the GitHub users MCP server.
func NewServer(client *Client) *Server {
	return &Server{client: client}
}

// MCPServer builds the underlying MCP server with all tools registered.
func (s *Server) MCPServer(version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version}, nil)

	server.AddTool(
		mcptool.NewTool("github_search",
			"Search GitHub users by login (name) and/or location. Provide at least one of them.",
			searchSchema),
		metrics.InstrumentToolHandler(ServerName, "github_search", s.handleSearch),
	)
	server.AddTool(
		mcptool.NewTool("github_user",
			"Fetch the public profile of a single GitHub user by login.",
			userSchema),
		metrics.InstrumentToolHandler(ServerName, "github_user", s.handleUser),
	)

	return server
}

func (s *Server) handleSearch(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := mcptool.ParseArguments(req)
	if err != nil {
		return mcptool.Errorf("invalid arguments: %v", err), nil
	}

	name, _ := mcptool.StringArg(args, "name")
	location, _ := mcptool.StringArg(args, "location")
	if name == "" && location == "" {
		return mcptool.ErrorResult("Provide at least one of 'name' or 'location'."), nil
	}

	perPage, ok := mcptool.IntArg(args, "per_page")
	if !ok || perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	results, err := s.client.SearchUsers(ctx, name, location, perPage)
	if err != nil {
		return mcptool.Errorf("search failed: %v", err), nil
	}

	return mcptool.JSONResult(results), nil
}

func (s *Server) handleUser(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := mcptool.ParseArguments(req)
	if err != nil {
		return mcptool.Errorf("invalid arguments: %v", err), nil
	}

	login, _ := mcptool.StringArg(args, "login")
	if login == "" {
		return mcptool.ErrorResult("Missing required argument 'login'."), nil
	}

	profile, err := s.client.GetUser(ctx, login)
	if err != nil {
		return mcptool.Errorf("lookup failed: %v", err), nil
	}

	return mcptool.JSONResult(profile), nil
}
