package tool

import (
	"context"
	"encoding/json"

	"github.com/matiasleandrokruk/shopassist/internal/domain/chat"
)

// Outcome classifies a dispatch for logs and the audit trail.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomeGuest          Outcome = "guest"
	OutcomeEmpty          Outcome = "empty"
	OutcomeMissingProduct Outcome = "missing_product"
	OutcomeFailed         Outcome = "failed"
	OutcomeInvalidArgs    Outcome = "invalid_arguments"
	OutcomeUnknownTool    Outcome = "unknown_tool"
)

// Invocation carries the turn context a handler may need besides the model's arguments.
type Invocation struct {
	ProductID     string
	UserID        string
	Authorization string
}

// Result is what a handler hands back to the orchestrator.
type Result struct {
	Reply   string
	Action  *chat.Action
	Outcome Outcome
	// ProductID is the product the handler acted on, if any.
	ProductID string
}

// Executor runs one tool. Backend failures are folded into the Result; the only
// error an executor returns is a *ToolArgumentError from decoding params.
type Executor interface {
	Execute(ctx context.Context, params json.RawMessage, inv Invocation) (*Result, error)
}
