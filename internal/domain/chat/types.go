// Package chat holds the transport-neutral chat request, response and action
// types shared by the orchestration service and the storefront relay.
package chat

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Turn is one entry of the caller-supplied conversation history, in chronological order.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is one chat turn. An empty ProductID means no product context;
// an empty UserID means guest mode.
type Request struct {
	Message             string `json:"message"`
	ProductID           string `json:"product_id,omitempty"`
	UserID              string `json:"user_id,omitempty"`
	ConversationHistory []Turn `json:"conversation_history,omitempty"`
}

// Guest reports whether the request comes from an anonymous session.
func (r Request) Guest() bool {
	return r.UserID == ""
}

// ActionType tells the storefront UI how to apply an action payload.
type ActionType string

const (
	ActionAddToCart ActionType = "add_to_cart"
	ActionNavigate  ActionType = "navigate"
	ActionSearch    ActionType = "search"
)

// Action is a structured side-effect result for the UI.
type Action struct {
	Type    ActionType `json:"type"`
	Payload any        `json:"payload,omitempty"`
}

// Response is the terminal output of one orchestration cycle.
type Response struct {
	Reply  string  `json:"reply"`
	Action *Action `json:"action,omitempty"`
}

// ErrorResponse is returned with non-2xx statuses. Error is a machine code or a
// user-facing message; Reply, when set, is the apology the chat surface shows.
type ErrorResponse struct {
	Error string `json:"error"`
	Reply string `json:"reply,omitempty"`
}
