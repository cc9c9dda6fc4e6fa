package llm

import "context"

// LLMProvider is the model-agnostic interface the orchestrator talks to.
// Adapters (OpenAI-compatible, Ollama) implement it so the assistant can be
// re-targeted to any provider with an equivalent function-calling contract.
type LLMProvider interface {
	// ChatCompletion performs a single blocking chat completion. No retries.
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// ModelInfo returns static metadata about the provider/model.
	ModelInfo() ModelMeta

	// HealthCheck returns nil if the provider is reachable and operational.
	HealthCheck(ctx context.Context) error
}
