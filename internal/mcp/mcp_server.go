// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/gazeplot/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the gazeplot MCP server without starting it.
// The store is built (or restored from cache) on the first tool call.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	return newServer(newToolHandler(baseCfg, mgr))
}

func newServer(h *toolHandler) *server.MCPServer {
	s := server.NewMCPServer(
		"Gazeplot Lookup Server",
		"1.0.0",
		server.WithLogging(),
	)

	s.AddTool(mcp.NewTool("list_feelings",
		mcp.WithDescription("List the feelings of the survey in display order."),
	), h.handleListFeelings)

	s.AddTool(mcp.NewTool("list_metrics",
		mcp.WithDescription("List the numeric metrics that can be plotted on either axis."),
	), h.handleListMetrics)

	s.AddTool(mcp.NewTool("get_combination",
		mcp.WithDescription("Return the precomputed group centers and point details for one feeling and metric pair."),
		mcp.WithString("feeling", mcp.Description("Feeling to look up."), mcp.Required()),
		mcp.WithString("x", mcp.Description("Metric on the x axis."), mcp.Required()),
		mcp.WithString("y", mcp.Description("Metric on the y axis."), mcp.Required()),
	), h.handleGetCombination)

	s.AddTool(mcp.NewTool("get_view",
		mcp.WithDescription("Render the overview of a feeling, or the detail view of one group, as chart markers."),
		mcp.WithString("feeling", mcp.Description("Feeling to show (defaults to the first feeling).")),
		mcp.WithString("x", mcp.Description("Metric on the x axis.")),
		mcp.WithString("y", mcp.Description("Metric on the y axis.")),
		mcp.WithString("group", mcp.Description("Group to drill into. Omit for the overview.")),
	), h.handleGetView)

	return s
}

// StartMCPServer starts the gazeplot MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
