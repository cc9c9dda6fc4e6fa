// Package agent runs one chat turn: product context, a single model call with
// the tool catalog, and dispatch of the first tool the model selected.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matiasleandrokruk/shopassist/internal/domain/audit"
	"github.com/matiasleandrokruk/shopassist/internal/domain/catalog"
	"github.com/matiasleandrokruk/shopassist/internal/domain/chat"
	"github.com/matiasleandrokruk/shopassist/internal/domain/tool"
	"github.com/matiasleandrokruk/shopassist/internal/infra/eventbus"
	"github.com/matiasleandrokruk/shopassist/internal/infra/llm"
)

var (
	ErrEmptyMessage    = errors.New("message is required")
	ErrModelInvocation = errors.New("model invocation failed")
)

const (
	replyFallback        = "Sorry, I could not process your request."
	replyInvalidToolArgs = "Sorry, I couldn't understand that request. Could you rephrase it?"
)

// Defaults used when Config leaves a field zero.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 500
)

// ProductLookup fetches the product a turn is anchored on.
type ProductLookup interface {
	GetProductDetails(ctx context.Context, productID string) (*catalog.Product, error)
}

// Config holds the model parameters of every turn.
type Config struct {
	// Model overrides the provider's default model when non-empty.
	Model       string
	Temperature float64
	MaxTokens   int
}

// Dependencies are the collaborators of the Orchestrator. Bus and Logger are optional.
type Dependencies struct {
	Products ProductLookup
	LLM      llm.LLMProvider
	Tools    *tool.Registry
	Bus      eventbus.EventBus
	Logger   *slog.Logger
}

// Orchestrator processes chat turns. It holds no per-turn state and is safe
// for concurrent use.
type Orchestrator struct {
	products ProductLookup
	llm      llm.LLMProvider
	tools    *tool.Registry
	bus      eventbus.EventBus
	logger   *slog.Logger
	cfg      Config

	toolDefs     []llm.ToolDefinition
	unknownTools atomic.Uint64
}

// NewOrchestrator wires an Orchestrator. The tool catalog is snapshotted here.
func NewOrchestrator(deps Dependencies, cfg Config) *Orchestrator {
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	o := &Orchestrator{
		products: deps.Products,
		llm:      deps.LLM,
		tools:    deps.Tools,
		bus:      deps.Bus,
		logger:   logger,
		cfg:      cfg,
	}
	if deps.Tools != nil {
		for _, d := range deps.Tools.Definitions() {
			o.toolDefs = append(o.toolDefs, llm.ToolDefinition{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.Parameters,
			})
		}
	}
	return o
}

// UnknownToolCalls returns how many model tool calls named a tool with no handler.
func (o *Orchestrator) UnknownToolCalls() uint64 {
	return o.unknownTools.Load()
}

// ProcessChat runs one turn. The only error paths are an empty message and a
// failed model call (wrapping ErrModelInvocation); tool failures become replies.
func (o *Orchestrator) ProcessChat(ctx context.Context, req chat.Request, authorization string) (*chat.Response, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	logger := o.logger.With(
		slog.String("request_id", middleware.GetReqID(ctx)),
		slog.Bool("guest", req.Guest()),
	)
	if !req.Guest() && authorization == "" {
		logger.WarnContext(ctx, "user_id supplied without authorization; cart calls will be unauthenticated")
	}

	systemPrompt := BuildSystemPrompt(o.productContext(ctx, logger, req.ProductID))
	resp, err := o.llm.ChatCompletion(ctx, llm.ChatRequest{
		Model:       o.cfg.Model,
		Messages:    BuildMessages(systemPrompt, req.ConversationHistory, message),
		Tools:       o.toolDefs,
		ToolChoice:  llm.ToolChoiceAuto,
		Temperature: o.cfg.Temperature,
		MaxTokens:   o.cfg.MaxTokens,
	})
	if err != nil {
		logger.ErrorContext(ctx, "model call failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrModelInvocation, err)
	}

	reply := resp.Content
	if reply == "" {
		reply = replyFallback
	}
	if len(resp.ToolCalls) == 0 {
		return &chat.Response{Reply: reply}, nil
	}

	call := resp.ToolCalls[0]
	if dropped := len(resp.ToolCalls) - 1; dropped > 0 {
		logger.DebugContext(ctx, "ignoring extra tool calls", slog.Int("dropped", dropped))
	}
	return o.dispatch(ctx, logger, call, req, authorization, reply), nil
}

func (o *Orchestrator) productContext(ctx context.Context, logger *slog.Logger, productID string) string {
	productID = strings.TrimSpace(productID)
	if productID == "" || o.products == nil {
		return ""
	}
	product, err := o.products.GetProductDetails(ctx, productID)
	if err != nil {
		logger.WarnContext(ctx, "product context unavailable",
			slog.String("product_id", productID),
			slog.String("error", err.Error()))
		return ""
	}
	return product.ContextBlock()
}

func (o *Orchestrator) dispatch(ctx context.Context, logger *slog.Logger, call llm.ToolCall, req chat.Request, authorization, reply string) *chat.Response {
	logger = logger.With(slog.String("tool", call.Name))
	event := audit.DispatchEvent{
		RequestID: middleware.GetReqID(ctx),
		ToolName:  call.Name,
		Guest:     req.Guest(),
		CreatedAt: time.Now(),
	}

	if o.tools == nil {
		return o.unknownTool(ctx, logger, event, reply)
	}
	executor, err := o.tools.Get(call.Name)
	if err != nil {
		return o.unknownTool(ctx, logger, event, reply)
	}

	logger.DebugContext(ctx, "executing tool", slog.String("arguments", string(call.Arguments)))
	result, err := executor.Execute(ctx, call.Arguments, tool.Invocation{
		ProductID:     req.ProductID,
		UserID:        req.UserID,
		Authorization: authorization,
	})
	if err != nil {
		var argErr *tool.ToolArgumentError
		if errors.As(err, &argErr) {
			logger.WarnContext(ctx, "rejected tool arguments", slog.String("error", err.Error()))
		} else {
			logger.ErrorContext(ctx, "tool execution failed", slog.String("error", err.Error()))
		}
		event.Outcome = string(tool.OutcomeInvalidArgs)
		event.Detail = err.Error()
		o.publish(audit.TopicToolDispatched, event)
		return &chat.Response{Reply: replyInvalidToolArgs}
	}

	event.Outcome = string(result.Outcome)
	event.ProductID = result.ProductID
	o.publish(audit.TopicToolDispatched, event)
	logger.InfoContext(ctx, "tool dispatched", slog.String("outcome", event.Outcome))

	return &chat.Response{Reply: result.Reply, Action: result.Action}
}

// unknownTool keeps the model's reply and attaches no action.
func (o *Orchestrator) unknownTool(ctx context.Context, logger *slog.Logger, event audit.DispatchEvent, reply string) *chat.Response {
	o.unknownTools.Add(1)
	logger.WarnContext(ctx, "unknown tool called")
	event.Outcome = string(tool.OutcomeUnknownTool)
	event.Detail = "no handler registered"
	o.publish(audit.TopicToolUnknown, event)
	return &chat.Response{Reply: reply}
}

func (o *Orchestrator) publish(topic string, event audit.DispatchEvent) {
	if o.bus == nil {
		return
	}
	o.bus.Publish(topic, event)
}
