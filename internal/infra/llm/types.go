// Package llm defines the provider-agnostic chat-completion abstraction used by
// the orchestrator, including function-calling tools.
package llm

import "encoding/json"

// Message represents a single turn in a conversation (role + content).
type Message struct {
	Role    string // "system" | "user" | "assistant"
	Content string
}

// ToolDefinition is a function the model may call. Parameters is a JSON-schema object.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolChoice values understood by every adapter.
const (
	ToolChoiceAuto = "auto"
	ToolChoiceNone = "none"
)

// ChatRequest is the input for a non-streaming chat completion.
type ChatRequest struct {
	// Model overrides the provider default when non-empty.
	Model       string
	Messages    []Message
	Tools       []ToolDefinition
	ToolChoice  string
	Temperature float64
	MaxTokens   int
}

// ToolCall is one function invocation selected by the model.
// Arguments is always a JSON document, whatever the provider's wire format.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ChatResponse is the output from a non-streaming chat completion.
type ChatResponse struct {
	Content    string     // The assistant message text, possibly empty when tools are called.
	ToolCalls  []ToolCall // In the order the model produced them.
	StopReason string     // "stop" | "length" | "tool_calls"
	Tokens     int        // Total tokens consumed (prompt + completion).
}

// ModelMeta describes the model / provider identity.
type ModelMeta struct {
	ID       string // e.g. "gpt-4o-mini", "llama3.2:3b"
	Provider string // e.g. "openai", "ollama"
}
