package relay

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/matiasleandrokruk/shopassist/internal/domain/chat"
)

// Validation messages shown to the shopper.
const (
	MsgMessageRequired   = "Message is required!"
	MsgMessageNotString  = "Message must be a string!"
	MsgMessageEmpty      = "Message cannot be empty!"
	MsgProductIDInvalid  = "Product ID must be a valid UUID!"
	MsgUserIDInvalid     = "User ID must be a valid UUID!"
	MsgHistoryNotArray   = "Conversation history must be an array!"
	MsgHistoryEntry      = "Conversation history entries need a role of user, assistant or system!"
	MsgBodyNotJSONObject = "Request body must be a JSON object!"
)

// ValidationError rejects a chat request before anything is forwarded.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ForwardRequest is the validated body sent to the assistant. History is
// forwarded as received once every entry has a known role.
type ForwardRequest struct {
	Message             string          `json:"message"`
	ProductID           string          `json:"product_id,omitempty"`
	UserID              string          `json:"user_id,omitempty"`
	ConversationHistory json.RawMessage `json:"conversation_history"`
}

// ValidateChatRequest checks the raw request body field by field and returns
// the normalized request. The message is trimmed; a missing history becomes [].
func ValidateChatRequest(raw []byte) (*ForwardRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, &ValidationError{Message: MsgBodyNotJSONObject}
	}

	out := &ForwardRequest{ConversationHistory: json.RawMessage("[]")}

	message, err := validateMessage(fields["message"])
	if err != nil {
		return nil, err
	}
	out.Message = message

	if out.ProductID, err = optionalUUID(fields["product_id"], MsgProductIDInvalid); err != nil {
		return nil, err
	}
	if out.UserID, err = optionalUUID(fields["user_id"], MsgUserIDInvalid); err != nil {
		return nil, err
	}

	if history, ok := present(fields["conversation_history"]); ok {
		if history[0] != '[' {
			return nil, &ValidationError{Message: MsgHistoryNotArray}
		}
		if err := validateHistory(history); err != nil {
			return nil, err
		}
		out.ConversationHistory = history
	}
	return out, nil
}

func validateMessage(raw json.RawMessage) (string, error) {
	value, ok := present(raw)
	if !ok {
		return "", &ValidationError{Message: MsgMessageRequired}
	}
	var message string
	if err := json.Unmarshal(value, &message); err != nil {
		return "", &ValidationError{Message: MsgMessageNotString}
	}
	if message == "" {
		return "", &ValidationError{Message: MsgMessageRequired}
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return "", &ValidationError{Message: MsgMessageEmpty}
	}
	return message, nil
}

// validateHistory rejects entries the assistant would refuse: anything that is
// not a {role, content} object or carries an unknown role.
func validateHistory(raw json.RawMessage) error {
	var turns []chat.Turn
	if err := json.Unmarshal(raw, &turns); err != nil {
		return &ValidationError{Message: MsgHistoryEntry}
	}
	for _, turn := range turns {
		if !turn.Role.Valid() {
			return &ValidationError{Message: MsgHistoryEntry}
		}
	}
	return nil
}

// optionalUUID accepts an absent/null field or a UUID string.
func optionalUUID(raw json.RawMessage, msg string) (string, error) {
	value, ok := present(raw)
	if !ok {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return "", &ValidationError{Message: msg}
	}
	// uuid.Parse also takes urn and braced forms; only the canonical one is allowed.
	if _, err := uuid.Parse(s); err != nil || len(s) != 36 {
		return "", &ValidationError{Message: msg}
	}
	return s, nil
}

// present reports whether a field was supplied with a non-null value.
func present(raw json.RawMessage) (json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, false
	}
	return trimmed, true
}
