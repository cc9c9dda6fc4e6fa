package handlers

import (
	"net/http"

	"github.com/matiasleandrokruk/shopassist/internal/domain/tool"
)

// ToolCatalog lists the tool definitions shown to the model.
type ToolCatalog interface {
	Definitions() []tool.Definition
}

// ToolStats reports dispatch anomalies.
type ToolStats interface {
	UnknownToolCalls() uint64
}

type ToolHandler struct {
	catalog ToolCatalog
	stats   ToolStats
}

func NewToolHandler(catalog ToolCatalog, stats ToolStats) *ToolHandler {
	return &ToolHandler{catalog: catalog, stats: stats}
}

type toolResponse struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ListTools handles GET /tools.
func (h *ToolHandler) ListTools(w http.ResponseWriter, _ *http.Request) {
	defs := h.catalog.Definitions()
	out := make([]toolResponse, 0, len(defs))
	for _, d := range defs {
		out = append(out, toolResponse{Name: d.Name, Description: d.Description, Parameters: d.Parameters})
	}

	meta := map[string]any{"total": len(out)}
	if h.stats != nil {
		meta["unknown_tool_calls"] = h.stats.UnknownToolCalls()
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out, "meta": meta})
}
