package agent

import (
	"strings"

	"github.com/matiasleandrokruk/shopassist/internal/domain/chat"
	"github.com/matiasleandrokruk/shopassist/internal/infra/llm"
)

const systemPromptHead = `You are a helpful e-commerce shopping assistant. Your role is to:
1. Answer questions about products in a friendly and informative way
2. Help users find products they're looking for
3. Assist with adding products to cart when requested
4. Provide product recommendations

`

const systemPromptTail = `

**IMPORTANT**: When a user expresses intent to purchase (e.g., "add to cart", "buy this", "I want this", "purchase"), you MUST call the add_to_cart function with the product_id.

Be conversational, helpful, and concise. If you don't have information, say so politely.`

// BuildSystemPrompt renders the fixed system instruction around an optional
// product context block. An empty block leaves the surrounding blank lines.
func BuildSystemPrompt(productContext string) string {
	var b strings.Builder
	b.Grow(len(systemPromptHead) + len(productContext) + len(systemPromptTail))
	b.WriteString(systemPromptHead)
	b.WriteString(productContext)
	b.WriteString(systemPromptTail)
	return b.String()
}

// BuildMessages lays out [system, ...history, user]. History is passed through
// in caller order without filtering.
func BuildMessages(systemPrompt string, history []chat.Turn, message string) []llm.Message {
	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: string(chat.RoleSystem), Content: systemPrompt})
	for _, turn := range history {
		msgs = append(msgs, llm.Message{Role: string(turn.Role), Content: turn.Content})
	}
	msgs = append(msgs, llm.Message{Role: string(chat.RoleUser), Content: message})
	return msgs
}
