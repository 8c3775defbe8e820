// Package sqlexplorer implements an MCP server exposing a SQLite database
// through query tools, a running insights memo resource, and a guided demo
// prompt.
package sqlexplorer

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/agentground/agentground/internal/mcptool"
	"github.com/agentground/agentground/internal/metrics"
)

// ServerName identifies this server to MCP clients.
const ServerName = "sqlite-explorer"

// MemoURI addresses the running insights memo resource.
const MemoURI = "memo://insights"

// demoPromptTemplate drives the guided walkthrough prompt.
const demoPromptTemplate = `You are demonstrating a SQLite MCP server for topic: %s.
First explain the demo, then inspect the schema with list_tables and
describe_table, run queries with read_query, record findings with
append_insight, and finish by reading the memo://insights resource.`

// Server exposes the explorer store over MCP.
type Server struct {
	store *Store
	log   zerolog.Logger
	mcp   *mcp.Server
}

// NewServer creates the SQLite explorer MCP server.
func NewServer(store *Store, log zerolog.Logger) *Server {
	return &Server{store: store, log: log}
}

// MCPServer builds the underlying MCP server with all tools, the memo
// resource, and the demo prompt registered. Subsequent calls return the
// same instance.
func (s *Server) MCPServer(version string) *mcp.Server {
	if s.mcp != nil {
		return s.mcp
	}

	server := mcp.NewServer(
		&mcp.Implementation{Name: ServerName, Version: version},
		&mcp.ServerOptions{
			Instructions: "Explore the demo SQLite database. Record findings with append_insight; the memo://insights resource collects them.",
			SubscribeHandler: func(_ context.Context, req *mcp.SubscribeRequest) error {
				if req.Params.URI != MemoURI {
					return fmt.Errorf("unknown resource: %s", req.Params.URI)
				}
				return nil
			},
			UnsubscribeHandler: func(_ context.Context, _ *mcp.UnsubscribeRequest) error {
				return nil
			},
		},
	)

	tools := []struct {
		tool    *mcp.Tool
		handler mcp.ToolHandler
	}{
		{mcptool.NewTool("create_table", "Create a new table (CREATE TABLE ...).", querySchema), s.handleCreateTable},
		{mcptool.NewTool("read_query", "Run a SELECT query against the database.", querySchema), s.handleReadQuery},
		{mcptool.NewTool("write_query", "Run an INSERT, UPDATE, or DELETE statement.", querySchema), s.handleWriteQuery},
		{mcptool.NewTool("list_tables", "List all table names in the database.", emptySchema), s.handleListTables},
		{mcptool.NewTool("describe_table", "Describe the columns of a table.", describeTableSchema), s.handleDescribeTable},
		{mcptool.NewTool("append_insight", "Add a business insight to the running memo.", appendInsightSchema), s.handleAppendInsight},
	}
	for _, t := range tools {
		server.AddTool(t.tool, metrics.InstrumentToolHandler(ServerName, t.tool.Name, t.handler))
	}

	server.AddResource(&mcp.Resource{
		URI:         MemoURI,
		Name:        "Business Insights Memo",
		Description: "A running log of insights generated during analysis",
		MIMEType:    "text/plain",
	}, s.handleReadMemo)

	server.AddPrompt(&mcp.Prompt{
		Name:        "mcp-demo",
		Description: "Walk through an interactive SQLite demo",
		Arguments: []*mcp.PromptArgument{
			{Name: "topic", Description: "Demo topic", Required: true},
		},
	}, s.handleDemoPrompt)

	s.mcp = server
	return server
}

// statementKind classifies a SQL statement by its leading keyword.
func statementKind(query string) string {
	fields := strings.Fields(strings.ToUpper(strings.TrimSpace(query)))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func (s *Server) handleCreateTable(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, res := s.queryArg(req)
	if res != nil {
		return res, nil
	}

	upper := strings.ToUpper(strings.TrimSpace(query))
	if !strings.HasPrefix(upper, "CREATE TABLE") {
		return mcptool.ErrorResult("create_table only supports CREATE TABLE statements."), nil
	}

	if _, err := s.store.Exec(ctx, query); err != nil {
		return mcptool.Errorf("create table failed: %v", err), nil
	}
	return mcptool.TextResult("Table created."), nil
}

func (s *Server) handleReadQuery(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, res := s.queryArg(req)
	if res != nil {
		return res, nil
	}

	if statementKind(query) != "SELECT" {
		return mcptool.ErrorResult("read_query only supports SELECT statements."), nil
	}

	rows, err := s.store.Query(ctx, query)
	if err != nil {
		return mcptool.Errorf("query failed: %v", err), nil
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return mcptool.JSONResult(rows), nil
}

func (s *Server) handleWriteQuery(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, res := s.queryArg(req)
	if res != nil {
		return res, nil
	}

	switch statementKind(query) {
	case "INSERT", "UPDATE", "DELETE":
	case "SELECT":
		return mcptool.ErrorResult("write_query does not support SELECT statements, use read_query."), nil
	default:
		return mcptool.ErrorResult("write_query only supports INSERT, UPDATE, or DELETE statements."), nil
	}

	affected, err := s.store.Exec(ctx, query)
	if err != nil {
		return mcptool.Errorf("statement failed: %v", err), nil
	}
	return mcptool.JSONResult(map[string]int64{"affected_rows": affected}), nil
}

func (s *Server) handleListTables(ctx context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tables, err := s.store.ListTables(ctx)
	if err != nil {
		return mcptool.Errorf("list tables failed: %v", err), nil
	}
	if tables == nil {
		tables = []string{}
	}
	return mcptool.JSONResult(tables), nil
}

func (s *Server) handleDescribeTable(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := mcptool.ParseArguments(req)
	if err != nil {
		return mcptool.Errorf("invalid arguments: %v", err), nil
	}

	table, _ := mcptool.StringArg(args, "table_name")
	if table == "" {
		return mcptool.ErrorResult("Missing required argument 'table_name'."), nil
	}

	columns, err := s.store.DescribeTable(ctx, table)
	if err != nil {
		return mcptool.Errorf("describe table failed: %v", err), nil
	}
	return mcptool.JSONResult(columns), nil
}

func (s *Server) handleAppendInsight(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := mcptool.ParseArguments(req)
	if err != nil {
		return mcptool.Errorf("invalid arguments: %v", err), nil
	}

	insight, _ := mcptool.StringArg(args, "insight")
	if insight == "" {
		return mcptool.ErrorResult("Missing required argument 'insight'."), nil
	}

	id, err := s.store.AppendInsight(ctx, insight)
	if err != nil {
		return mcptool.Errorf("append insight failed: %v", err), nil
	}

	// Tell subscribed clients the memo changed.
	if err := s.mcp.ResourceUpdated(ctx, &mcp.ResourceUpdatedNotificationParams{URI: MemoURI}); err != nil {
		s.log.Warn().Err(err).Msg("failed to notify resource update")
	}

	return mcptool.TextResult("Insight " + id + " appended."), nil
}

func (s *Server) handleReadMemo(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	if req.Params.URI != MemoURI {
		return nil, fmt.Errorf("unknown resource: %s", req.Params.URI)
	}

	memo, err := s.store.SynthesizeMemo(ctx)
	if err != nil {
		return nil, fmt.Errorf("synthesize memo: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{URI: MemoURI, MIMEType: "text/plain", Text: memo},
		},
	}, nil
}

func (s *Server) handleDemoPrompt(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	if req.Params.Name != "mcp-demo" {
		return nil, fmt.Errorf("unknown prompt: %s", req.Params.Name)
	}
	topic, ok := req.Params.Arguments["topic"]
	if !ok || topic == "" {
		return nil, fmt.Errorf("prompt %q requires a 'topic' argument", req.Params.Name)
	}

	return &mcp.GetPromptResult{
		Description: "Demo for topic: " + topic,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: fmt.Sprintf(demoPromptTemplate, topic)},
			},
		},
	}, nil
}

// queryArg extracts the required 'query' argument shared by the SQL tools.
func (s *Server) queryArg(req *mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	args, err := mcptool.ParseArguments(req)
	if err != nil {
		return "", mcptool.Errorf("invalid arguments: %v", err)
	}
	query, _ := mcptool.StringArg(args, "query")
	if strings.TrimSpace(query) == "" {
		return "", mcptool.ErrorResult("Missing required argument 'query'.")
	}
	return query, nil
}
