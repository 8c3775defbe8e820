package sqlexplorer

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callRequest(args string) *mcp.CallToolRequest {
	return &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Arguments: json.RawMessage(args)},
	}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func newExplorer(t *testing.T) *Server {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	server := NewServer(store, zerolog.Nop())
	server.MCPServer("test")
	return server
}

func TestStatementKind(t *testing.T) {
	assert.Equal(t, "SELECT", statementKind("  select * from users"))
	assert.Equal(t, "INSERT", statementKind("INSERT INTO t VALUES (1)"))
	assert.Equal(t, "", statementKind("   "))
}

func TestReadQuery(t *testing.T) {
	server := newExplorer(t)
	ctx := context.Background()

	res, err := server.handleReadQuery(ctx, callRequest(`{"query": "SELECT name FROM users ORDER BY id LIMIT 1"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.JSONEq(t, `[{"name": "Alice"}]`, resultText(t, res))
}

func TestReadQueryRejectsWrites(t *testing.T) {
	server := newExplorer(t)

	res, err := server.handleReadQuery(context.Background(), callRequest(`{"query": "DELETE FROM orders"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "only supports SELECT")
}

func TestReadQueryEmptyResult(t *testing.T) {
	server := newExplorer(t)

	res, err := server.handleReadQuery(context.Background(), callRequest(`{"query": "SELECT * FROM users WHERE id = -1"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.JSONEq(t, `[]`, resultText(t, res))
}

func TestWriteQuery(t *testing.T) {
	server := newExplorer(t)
	ctx := context.Background()

	res, err := server.handleWriteQuery(ctx, callRequest(`{"query": "UPDATE products SET price = 1.0"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.JSONEq(t, `{"affected_rows": 5}`, resultText(t, res))
}

func TestWriteQueryRejectsSelect(t *testing.T) {
	server := newExplorer(t)

	res, err := server.handleWriteQuery(context.Background(), callRequest(`{"query": "SELECT 1"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "use read_query")
}

func TestWriteQueryRejectsDDL(t *testing.T) {
	server := newExplorer(t)

	res, err := server.handleWriteQuery(context.Background(), callRequest(`{"query": "DROP TABLE users"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestCreateTable(t *testing.T) {
	server := newExplorer(t)
	ctx := context.Background()

	res, err := server.handleCreateTable(ctx, callRequest(`{"query": "CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)

	tables, err := server.store.ListTables(ctx)
	require.NoError(t, err)
	assert.Contains(t, tables, "notes")
}

func TestCreateTableRejectsOtherDDL(t *testing.T) {
	server := newExplorer(t)

	res, err := server.handleCreateTable(context.Background(), callRequest(`{"query": "DROP TABLE users"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestListTablesTool(t *testing.T) {
	server := newExplorer(t)

	res, err := server.handleListTables(context.Background(), callRequest(`{}`))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var tables []string
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &tables))
	assert.Contains(t, tables, "users")
	assert.Contains(t, tables, "orders")
}

func TestDescribeTableTool(t *testing.T) {
	server := newExplorer(t)

	res, err := server.handleDescribeTable(context.Background(), callRequest(`{"table_name": "products"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var columns []ColumnInfo
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &columns))
	require.Len(t, columns, 3)
	assert.Equal(t, "id", columns[0].Name)

	res, err = server.handleDescribeTable(context.Background(), callRequest(`{}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestMissingQueryArgument(t *testing.T) {
	server := newExplorer(t)

	res, err := server.handleReadQuery(context.Background(), callRequest(`{}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "query")
}

// TestSessionRoundTrip drives the full server over an in-memory transport:
// tool listing, the memo resource, the demo prompt, and the resource-updated
// notification after append_insight.
func TestSessionRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	srv := NewServer(store, zerolog.Nop()).MCPServer("test")

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	go func() { _ = srv.Run(ctx, serverTransport) }()

	updated := make(chan string, 1)
	client := mcp.NewClient(
		&mcp.Implementation{Name: "test-client", Version: "test"},
		&mcp.ClientOptions{
			ResourceUpdatedHandler: func(_ context.Context, req *mcp.ResourceUpdatedNotificationRequest) {
				updated <- req.Params.URI
			},
		},
	)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	listed, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)
	assert.Len(t, listed.Tools, 6)

	// Initially empty memo.
	read, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: MemoURI})
	require.NoError(t, err)
	require.Len(t, read.Contents, 1)
	assert.Equal(t, "No business insights have been recorded yet.", read.Contents[0].Text)

	// Subscribing to an unknown URI fails; the memo URI works.
	err = session.Subscribe(ctx, &mcp.SubscribeParams{URI: "memo://other"})
	require.Error(t, err)
	require.NoError(t, session.Subscribe(ctx, &mcp.SubscribeParams{URI: MemoURI}))

	// Appending an insight notifies the subscriber.
	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "append_insight",
		Arguments: map[string]any{"insight": "Whatsits are underpriced."},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	select {
	case uri := <-updated:
		assert.Equal(t, MemoURI, uri)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for resource update")
	}

	read, err = session.ReadResource(ctx, &mcp.ReadResourceParams{URI: MemoURI})
	require.NoError(t, err)
	assert.Contains(t, read.Contents[0].Text, "Whatsits are underpriced.")

	// The demo prompt requires a topic.
	prompt, err := session.GetPrompt(ctx, &mcp.GetPromptParams{
		Name:      "mcp-demo",
		Arguments: map[string]string{"topic": "retail"},
	})
	require.NoError(t, err)
	require.Len(t, prompt.Messages, 1)
	text, ok := prompt.Messages[0].Content.(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "retail")

	_, err = session.GetPrompt(ctx, &mcp.GetPromptParams{Name: "mcp-demo"})
	require.Error(t, err)
}
