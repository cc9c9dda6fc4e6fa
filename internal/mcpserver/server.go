// Package mcpserver exposes the read-only catalog tools over the Model Context
// Protocol so external agents can search and recommend with the same handlers
// the chat assistant uses. add_to_cart is not exposed: it needs a user session.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/matiasleandrokruk/shopassist/internal/domain/tool"
	"github.com/matiasleandrokruk/shopassist/internal/version"
)

const serverName = "shopassist"

// New builds an MCP server whose tools dispatch through registry.
func New(registry *tool.Registry, logger *slog.Logger) (*mcp.Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version.Version}, nil)

	h := &handlers{registry: registry, logger: logger}
	search, ok := registry.Definition(tool.SearchProducts)
	if !ok {
		return nil, fmt.Errorf("mcpserver: %w: %s", tool.ErrToolDefinitionNotFound, tool.SearchProducts)
	}
	similar, ok := registry.Definition(tool.GetSimilarProducts)
	if !ok {
		return nil, fmt.Errorf("mcpserver: %w: %s", tool.ErrToolDefinitionNotFound, tool.GetSimilarProducts)
	}

	mcp.AddTool(server, &mcp.Tool{Name: search.Name, Description: search.Description}, h.search)
	mcp.AddTool(server, &mcp.Tool{Name: similar.Name, Description: similar.Description}, h.similar)
	return server, nil
}

// Handler serves server over streamable HTTP.
func Handler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
}

type handlers struct {
	registry *tool.Registry
	logger   *slog.Logger
}

func (h *handlers) search(ctx context.Context, _ *mcp.CallToolRequest, in tool.SearchArgs) (*mcp.CallToolResult, any, error) {
	return h.run(ctx, tool.SearchProducts, in)
}

func (h *handlers) similar(ctx context.Context, _ *mcp.CallToolRequest, in tool.SimilarArgs) (*mcp.CallToolResult, any, error) {
	if in.ProductID == "" {
		return nil, nil, fmt.Errorf("product_id is required")
	}
	return h.run(ctx, tool.GetSimilarProducts, in)
}

// run re-encodes the typed input and hands it to the registered executor, so
// argument checks match the chat path.
func (h *handlers) run(ctx context.Context, name string, in any) (*mcp.CallToolResult, any, error) {
	executor, err := h.registry.Get(name)
	if err != nil {
		return nil, nil, err
	}
	params, err := json.Marshal(in)
	if err != nil {
		return nil, nil, fmt.Errorf("encode %s arguments: %w", name, err)
	}

	result, err := executor.Execute(ctx, params, tool.Invocation{})
	if err != nil {
		h.logger.WarnContext(ctx, "mcp tool rejected arguments", slog.String("tool", name), slog.String("error", err.Error()))
		return nil, nil, err
	}
	h.logger.DebugContext(ctx, "mcp tool executed", slog.String("tool", name), slog.String("outcome", string(result.Outcome)))

	content := []mcp.Content{&mcp.TextContent{Text: result.Reply}}
	if result.Action != nil {
		payload, err := json.Marshal(result.Action.Payload)
		if err != nil {
			return nil, nil, fmt.Errorf("encode %s result: %w", name, err)
		}
		content = append(content, &mcp.TextContent{Text: string(payload)})
	}
	return &mcp.CallToolResult{
		Content: content,
		IsError: result.Outcome == tool.OutcomeFailed,
	}, nil, nil
}
