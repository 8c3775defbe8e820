package agentground

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransportFor(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServerConfig
		want    any
		wantErr string
	}{
		{
			name: "stdio",
			cfg:  &StdioServerConfig{Command: "server", Args: []string{"-stdio"}},
			want: &mcp.CommandTransport{},
		},
		{
			name:    "stdio without command",
			cfg:     &StdioServerConfig{},
			wantErr: "requires a command",
		},
		{
			name: "sse",
			cfg:  &SSEServerConfig{URL: "http://localhost:9000/sse"},
			want: &mcp.SSEClientTransport{},
		},
		{
			name:    "sse without url",
			cfg:     &SSEServerConfig{},
			wantErr: "requires a URL",
		},
		{
			name: "http",
			cfg:  &HTTPServerConfig{URL: "http://localhost:9000/mcp"},
			want: &mcp.StreamableClientTransport{},
		},
		{
			name:    "http without url",
			cfg:     &HTTPServerConfig{},
			wantErr: "requires a URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport, err := transportFor(tt.cfg, nil)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, transport)
		})
	}
}

func TestServerConfigTypes(t *testing.T) {
	assert.Equal(t, ServerTypeStdio, (&StdioServerConfig{}).GetType())
	assert.Equal(t, ServerTypeSSE, (&SSEServerConfig{}).GetType())
	assert.Equal(t, ServerTypeHTTP, (&HTTPServerConfig{}).GetType())
}

func TestQualifyAndSplitToolName(t *testing.T) {
	assert.Equal(t, "calc__add", qualifyToolName("calc", "add"))

	server, tool, ok := splitToolName("calc__add")
	require.True(t, ok)
	assert.Equal(t, "calc", server)
	assert.Equal(t, "add", tool)

	_, _, ok = splitToolName("no-separator")
	assert.False(t, ok)

	_, _, ok = splitToolName("__tool")
	assert.False(t, ok)
}

func TestClientWithHeaders(t *testing.T) {
	var got http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer ts.Close()

	client := clientWithHeaders(nil, map[string]string{"Authorization": "Bearer abc"})
	resp, err := client.Get(ts.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer abc", got.Get("Authorization"))
}

func TestClientWithHeadersNoHeaders(t *testing.T) {
	base := &http.Client{}
	assert.Same(t, base, clientWithHeaders(base, nil))
}
