package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	toolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "toggl_mcp",
			Subsystem: "tools",
			Name:      "calls_total",
			Help:      "Tool invocations by outcome.",
		},
		[]string{"tool", "outcome"},
	)

	toolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "toggl_mcp",
			Subsystem: "tools",
			Name:      "duration_seconds",
			Help:      "Tool handler latency, backend calls included.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"tool"},
	)
)

// instrument records metrics and a debug log line for every call of h.
func instrument(log *slog.Logger, name string, h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		res, err := h(ctx, req)
		elapsed := time.Since(start)

		outcome := "ok"
		switch {
		case err != nil:
			outcome = "failure"
		case res != nil && res.IsError:
			outcome = "error"
		}
		toolCallsTotal.WithLabelValues(name, outcome).Inc()
		toolDuration.WithLabelValues(name).Observe(elapsed.Seconds())
		log.Debug("tool call", slog.String("tool", name), slog.String("outcome", outcome), slog.Duration("elapsed", elapsed))
		return res, err
	}
}

// addTool registers t with instrumentation.
func addTool(s *server.MCPServer, log *slog.Logger, t mcp.Tool, h server.ToolHandlerFunc) {
	s.AddTool(t, instrument(log, t.Name, h))
}
