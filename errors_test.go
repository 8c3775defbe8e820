package agentground

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTypes(t *testing.T) {
	base := errors.New("connection refused")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "connection",
			err:  &ConnectionError{Server: "calc", Err: base},
			want: `failed to connect to MCP server "calc"`,
		},
		{
			name: "tool",
			err:  &ToolError{Server: "calc", Tool: "add", Err: base},
			want: `tool add on server "calc" failed`,
		},
		{
			name: "model",
			err:  &ModelError{Model: "gpt-4o", Err: base},
			want: `chat model "gpt-4o" failed`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorContains(t, tt.err, tt.want)
			assert.ErrorIs(t, tt.err, base)

			var agentErr AgentError
			require.ErrorAs(t, tt.err, &agentErr)
			assert.True(t, agentErr.IsAgentError())
		})
	}
}

func TestErrorWrapping(t *testing.T) {
	inner := &ToolError{Server: "calc", Tool: "add", Err: errors.New("timeout")}
	wrapped := fmt.Errorf("run failed: %w", inner)

	var toolErr *ToolError
	require.ErrorAs(t, wrapped, &toolErr)
	assert.Equal(t, "add", toolErr.Tool)
}
