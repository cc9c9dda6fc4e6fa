package audit

import "time"

// Event bus topics the orchestrator publishes on.
const (
	TopicToolDispatched = "tool.dispatched"
	TopicToolUnknown    = "tool.unknown"
)

// DispatchEvent describes one tool call the assistant acted on (or refused to).
// It is immutable once published.
type DispatchEvent struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id,omitempty"`
	ToolName  string    `json:"tool_name"`
	Outcome   string    `json:"outcome"`
	Guest     bool      `json:"guest"`
	ProductID string    `json:"product_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
