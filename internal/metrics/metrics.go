// Package metrics exposes Prometheus instrumentation for the MCP servers.
package metrics

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	toolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agentground_tool_calls_total",
		Help: "Tool invocations by server, tool and outcome.",
	}, []string{"server", "tool", "outcome"})

	toolDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agentground_tool_duration_seconds",
		Help:    "Tool invocation latency by server and tool.",
		Buckets: prometheus.DefBuckets,
	}, []string{"server", "tool"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agentground_http_requests_total",
		Help: "HTTP requests by handler and status class.",
	}, []string{"handler", "class"})
)

// ObserveHTTPRequest records one HTTP request against a named handler.
func ObserveHTTPRequest(handler, statusClass string) {
	httpRequests.WithLabelValues(handler, statusClass).Inc()
}

// InstrumentToolHandler wraps a low-level tool handler with call counting
// and latency observation. The outcome label distinguishes server-flagged
// tool errors ("error") from successful calls ("ok"); handler panics and
// transport failures never reach here because handlers encode failures in
// the result.
func InstrumentToolHandler(server, tool string, next mcp.ToolHandler) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		res, err := next(ctx, req)
		toolDuration.WithLabelValues(server, tool).Observe(time.Since(start).Seconds())

		outcome := "ok"
		switch {
		case err != nil:
			outcome = "failed"
		case res != nil && res.IsError:
			outcome = "error"
		}
		toolCalls.WithLabelValues(server, tool, outcome).Inc()

		return res, err
	}
}
