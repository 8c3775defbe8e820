// Package toolbox implements a general-purpose MCP server bundling small
// utility tools: weather lookup, arithmetic, the current time, web search,
// news headlines, and a queryable demo dataset.
package toolbox

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/agentground/agentground/internal/mcptool"
	"github.com/agentground/agentground/internal/metrics"
)

// ServerName identifies this server to MCP clients.
const ServerName = "toolbox"

const (
	defaultSearchResults = 5
	defaultNewsLimit     = 5
	maxNewsLimit         = 25
)

// Server bundles the toolbox tools and their outbound HTTP configuration.
type Server struct {
	httpClient   *http.Client
	geocodingURL string
	forecastURL  string
	searchURL    string
	newsFeedURL  string
	now          func() time.Time
}

// ServerOption configures a toolbox Server.
type ServerOption func(*Server)

// WithHTTPClient sets the client used for outbound requests.
func WithHTTPClient(c *http.Client) ServerOption {
	return func(s *Server) { s.httpClient = c }
}

// WithNewsFeedURL overrides the RSS feed used by the latest_news tool.
func WithNewsFeedURL(u string) ServerOption {
	return func(s *Server) {
		if u != "" {
			s.newsFeedURL = u
		}
	}
}

// NewServer creates a toolbox server with default endpoints.
func NewServer(opts ...ServerOption) *Server {
	s := &Server{
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		geocodingURL: geocodingURL,
		forecastURL:  forecastURL,
		searchURL:    duckDuckGoURL,
		newsFeedURL:  DefaultNewsFeedURL,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MCPServer builds the underlying MCP server with all tools registered.
func (s *Server) MCPServer(version string) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{Name: ServerName, Version: version},
		nil,
	)

	tools := []struct {
		tool    *mcp.Tool
		handler mcp.ToolHandler
	}{
		{mcptool.NewTool("weather", "Get current weather conditions for a city.", weatherSchema), s.handleWeather},
		{mcptool.NewTool("add", "Add two numbers.", addSchema), s.handleAdd},
		{mcptool.NewTool("current_datetime", "Get the current date and time.", datetimeSchema), s.handleDatetime},
		{mcptool.NewTool("duckduckgo_search", "Search the web via the DuckDuckGo Instant Answer API.", searchWebSchema), s.handleSearch},
		{mcptool.NewTool("latest_news", "Fetch the latest headlines from the configured news feed.", newsSchema), s.handleNews},
		{mcptool.NewTool("table_query", "Query the built-in demo dataset with head, describe, sort, or filter.", tableQuerySchema), s.handleTableQuery},
	}
	for _, t := range tools {
		server.AddTool(t.tool, metrics.InstrumentToolHandler(ServerName, t.tool.Name, t.handler))
	}

	return server
}

func (s *Server) handleWeather(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := mcptool.ParseArguments(req)
	if err != nil {
		return mcptool.Errorf("invalid arguments: %v", err), nil
	}
	city, _ := mcptool.StringArg(args, "city")
	if city == "" {
		return mcptool.ErrorResult("Missing required argument 'city'."), nil
	}

	weather, err := s.FetchWeather(ctx, city)
	if err != nil {
		return mcptool.Errorf("weather lookup failed: %v", err), nil
	}
	return mcptool.JSONResult(weather), nil
}

func (s *Server) handleAdd(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := mcptool.ParseArguments(req)
	if err != nil {
		return mcptool.Errorf("invalid arguments: %v", err), nil
	}
	a, okA := mcptool.NumberArg(args, "a")
	b, okB := mcptool.NumberArg(args, "b")
	if !okA || !okB {
		return mcptool.ErrorResult("Both 'a' and 'b' must be numbers."), nil
	}
	return mcptool.TextResult(fmt.Sprintf("%g", a+b)), nil
}

func (s *Server) handleDatetime(_ context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcptool.TextResult(s.now().Format(time.RFC3339)), nil
}

func (s *Server) handleSearch(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := mcptool.ParseArguments(req)
	if err != nil {
		return mcptool.Errorf("invalid arguments: %v", err), nil
	}
	query, _ := mcptool.StringArg(args, "query")
	if query == "" {
		return mcptool.ErrorResult("Missing required argument 'query'."), nil
	}
	max, ok := mcptool.IntArg(args, "max_results")
	if !ok || max < 1 {
		max = defaultSearchResults
	}

	summary, err := s.SearchWeb(ctx, query, max)
	if err != nil {
		return mcptool.Errorf("search failed: %v", err), nil
	}
	return mcptool.TextResult(summary), nil
}

func (s *Server) handleNews(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := mcptool.ParseArguments(req)
	if err != nil {
		return mcptool.Errorf("invalid arguments: %v", err), nil
	}
	limit, ok := mcptool.IntArg(args, "limit")
	if !ok || limit < 1 {
		limit = defaultNewsLimit
	}
	if limit > maxNewsLimit {
		limit = maxNewsLimit
	}

	headlines, err := s.FetchHeadlines(ctx, limit)
	if err != nil {
		return mcptool.Errorf("news fetch failed: %v", err), nil
	}
	return mcptool.TextResult(formatHeadlines(headlines)), nil
}

func (s *Server) handleTableQuery(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := mcptool.ParseArguments(req)
	if err != nil {
		return mcptool.Errorf("invalid arguments: %v", err), nil
	}
	command, _ := mcptool.StringArg(args, "command")
	if command == "" {
		return mcptool.ErrorResult("Missing required argument 'command'."), nil
	}

	result, err := TableQuery(command)
	if err != nil {
		return mcptool.Errorf("table query failed: %v", err), nil
	}
	return mcptool.JSONResult(result), nil
}
