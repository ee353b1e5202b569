// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/solarcorr/internal/contract"
	"github.com/huangsam/solarcorr/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the solarcorr MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config) *server.MCPServer {
	s := server.NewMCPServer(
		"Solar Correlation Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{baseCfg: baseCfg}
	numbers := mcp.Items(map[string]any{"type": "number"})

	// --- 1. Tool: compare_regression ---
	s.AddTool(mcp.NewTool("compare_regression",
		mcp.WithDescription("Fit y on x with ordinary least squares twice (closed form and library oracle) and report both fits with their snapped differences."),
		mcp.WithArray("x", mcp.Description("Independent values."), mcp.Required(), numbers),
		mcp.WithArray("y", mcp.Description("Dependent values, same length as x."), mcp.Required(), numbers),
		mcp.WithBoolean("log_x", mcp.Description("Regress on log10(x), dropping pairs where x is not positive.")),
	), h.handleCompareRegression)

	// --- 2. Tool: match_events ---
	s.AddTool(mcp.NewTool("match_events",
		mcp.WithDescription("Join sparse events to a dense time series by reducing the samples inside a closed window around each event."),
		mcp.WithArray("events", mcp.Description("Events as objects with timestamp, and optionally velocity, flare_class, brightness."), mcp.Required(),
			mcp.Items(map[string]any{"type": "object"})),
		mcp.WithArray("samples", mcp.Description("Dense samples as objects with timestamp and value."), mcp.Required(),
			mcp.Items(map[string]any{"type": "object"})),
		mcp.WithString("param", mcp.Description("Name of the dense series. Defaults to 'param'.")),
		mcp.WithString("half_width", mcp.Description("Window half-width (e.g., '6 hours', '90m'). Defaults to the server configuration.")),
		mcp.WithString("aggregator", mcp.Description("Window reduction. Defaults to the server configuration."),
			mcp.Enum(aggregatorNames()...)),
	), h.handleMatchEvents)

	// --- 3. Tool: summarize ---
	s.AddTool(mcp.NewTool("summarize",
		mcp.WithDescription("Summary statistics (N, mean, median, std, SEM, min, max) of a list of numbers."),
		mcp.WithArray("values", mcp.Description("Values to summarize."), mcp.Required(), numbers),
	), h.handleSummarize)

	return s
}

// StartMCPServer starts the solarcorr MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config) error {
	s := NewMCPServer(baseCfg)
	return server.ServeStdio(s)
}

func aggregatorNames() []string {
	names := make([]string, len(schema.AllAggregators))
	for i, a := range schema.AllAggregators {
		names[i] = string(a)
	}
	return names
}
