package mcp

import (
	"context"
	"fmt"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/huangsam/gazeplot/core"
	"github.com/huangsam/gazeplot/core/store"
	"github.com/huangsam/gazeplot/internal/contract"
	"github.com/huangsam/gazeplot/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// storeLoader builds or restores the lookup store.
type storeLoader func(ctx context.Context) (*store.Store, error)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	load    storeLoader

	mu    sync.Mutex
	store *store.Store
}

func newToolHandler(baseCfg *contract.Config, mgr contract.CacheManager) *toolHandler {
	return &toolHandler{
		baseCfg: baseCfg,
		load: func(ctx context.Context) (*store.Store, error) {
			s, _, err := core.LoadStore(core.WithSuppressHeader(ctx), baseCfg, mgr)
			return s, err
		},
	}
}

// getStore loads the store on first use. Failed loads are retried on the next call.
func (h *toolHandler) getStore(ctx context.Context) (*store.Store, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.store != nil {
		return h.store, nil
	}
	s, err := h.load(ctx)
	if err != nil {
		return nil, err
	}
	h.store = s
	return s, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (h *toolHandler) handleListFeelings(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, err := h.getStore(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("build failed: %v", err)), nil
	}
	return jsonResult(s.Feelings())
}

func (h *toolHandler) handleListMetrics(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, err := h.getStore(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("build failed: %v", err)), nil
	}
	return jsonResult(s.Metrics())
}

func (h *toolHandler) handleGetCombination(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	feeling, err := request.RequireString("feeling")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	x, err := request.RequireString("x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	y, err := request.RequireString("y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s, err := h.getStore(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("build failed: %v", err)), nil
	}
	comb, err := s.Lookup(feeling, x, y)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}
	return jsonResult(comb)
}

func (h *toolHandler) handleGetView(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.Feeling = schema.FeelingID(request.GetString("feeling", ""))
	cfg.ViewX = schema.MetricID(request.GetString("x", ""))
	cfg.ViewY = schema.MetricID(request.GetString("y", ""))
	cfg.Group = schema.GroupName(request.GetString("group", ""))

	s, err := h.getStore(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("build failed: %v", err)), nil
	}
	m, err := core.SelectView(s, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid view: %v", err)), nil
	}
	return jsonResult(m.View())
}
