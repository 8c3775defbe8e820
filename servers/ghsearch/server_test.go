package ghsearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
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

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search/users":
			w.Write([]byte(`{"items": [{"login": "octocat", "html_url": "https://github.com/octocat", "score": 1.0}]}`))
		case "/users/octocat":
			w.Write([]byte(`{"login": "octocat", "name": "The Octocat", "html_url": "https://github.com/octocat"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)
	return NewServer(NewClient(ClientConfig{BaseURL: ts.URL, RequestsPerSecond: 1000}))
}

func TestHandleSearch(t *testing.T) {
	server := newTestServer(t)

	res, err := server.handleSearch(context.Background(), callRequest(`{"name": "octo"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var results []UserResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "octocat", results[0].Login)
}

func TestHandleSearchMissingCriteria(t *testing.T) {
	server := newTestServer(t)

	res, err := server.handleSearch(context.Background(), callRequest(`{}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "at least one")
}

func TestHandleUser(t *testing.T) {
	server := newTestServer(t)

	res, err := server.handleUser(context.Background(), callRequest(`{"login": "octocat"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var profile UserProfile
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &profile))
	assert.Equal(t, "The Octocat", profile.Name)
}

func TestHandleUserMissingLogin(t *testing.T) {
	server := newTestServer(t)

	res, err := server.handleUser(context.Background(), callRequest(`{}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestMCPServerRegistersTools(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	srv := newTestServer(t).MCPServer("test")
	go func() { _ = srv.Run(ctx, serverTransport) }()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	listed, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)

	names := make([]string, 0, len(listed.Tools))
	for _, tool := range listed.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"github_search", "github_user"}, names)
}
