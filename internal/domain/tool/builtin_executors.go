package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/matiasleandrokruk/shopassist/internal/domain/cart"
	"github.com/matiasleandrokruk/shopassist/internal/domain/catalog"
	"github.com/matiasleandrokruk/shopassist/internal/domain/chat"
)

const maxListedProducts = 5

const (
	replyCartNeedsProduct    = "Sorry, I need a product to add to cart."
	replyCartFailed          = "Sorry, there was an error adding the product to your cart. Please try again or add it manually."
	replySearchEmpty         = "Sorry, I couldn't find any products matching your search."
	replySearchFailed        = "Sorry, there was an error searching for products. Please try again."
	replySimilarNeedsProduct = "Sorry, I need a product to find similar items."
	replySimilarEmpty        = "Sorry, I couldn't find similar products at the moment."
	replySimilarFailed       = "Sorry, there was an error finding similar products. Please try again."
)

// SimilarPayload is the navigate action payload for recommendations.
type SimilarPayload struct {
	SimilarProducts []catalog.Product `json:"similarProducts"`
}

// AddToCartExecutor adds the resolved product to the user's cart, or builds a
// guest payload when the turn has no user id.
type AddToCartExecutor struct {
	cart   CartMutator
	logger *slog.Logger
}

func (e *AddToCartExecutor) Execute(ctx context.Context, params json.RawMessage, inv Invocation) (*Result, error) {
	args, quantity, err := DecodeAddToCart(params)
	if err != nil {
		return nil, err
	}

	productID := resolveProductID(args.ProductID, inv.ProductID)
	if productID == "" {
		return &Result{Reply: replyCartNeedsProduct, Outcome: OutcomeMissingProduct}, nil
	}

	if inv.UserID == "" {
		payload := cart.GuestCartPayload(productID, quantity)
		return &Result{
			Reply:     fmt.Sprintf("I'll add %d %s to your cart!", payload.Quantity, pluralItems(payload.Quantity)),
			Action:    &chat.Action{Type: chat.ActionAddToCart, Payload: payload},
			Outcome:   OutcomeGuest,
			ProductID: productID,
		}, nil
	}

	payload := e.cart.AddToCart(ctx, inv.UserID, productID, quantity, inv.Authorization)
	action := &chat.Action{Type: chat.ActionAddToCart, Payload: payload}
	if !payload.Succeeded() {
		e.logger.ErrorContext(ctx, "add to cart failed",
			slog.String("product_id", productID),
			slog.String("error", payload.Error))
		return &Result{Reply: replyCartFailed, Action: action, Outcome: OutcomeFailed, ProductID: productID}, nil
	}

	return &Result{
		Reply:     fmt.Sprintf("Great! I've added %d %s to your cart. You can view your cart anytime!", payload.Quantity, pluralItems(payload.Quantity)),
		Action:    action,
		Outcome:   OutcomeSuccess,
		ProductID: productID,
	}, nil
}

// SearchProductsExecutor runs a filtered catalog search.
type SearchProductsExecutor struct {
	catalog ProductFinder
	logger  *slog.Logger
}

func (e *SearchProductsExecutor) Execute(ctx context.Context, params json.RawMessage, inv Invocation) (*Result, error) {
	args, err := DecodeSearch(params)
	if err != nil {
		return nil, err
	}

	products, err := e.catalog.SearchProducts(ctx, args.Filters(), inv.Authorization)
	if err != nil {
		e.logger.ErrorContext(ctx, "product search failed", slog.String("error", err.Error()))
		return &Result{Reply: replySearchFailed, Outcome: OutcomeFailed}, nil
	}
	if len(products) == 0 {
		return &Result{Reply: replySearchEmpty, Outcome: OutcomeEmpty}, nil
	}

	reply := fmt.Sprintf("I found %d product%s:\n\n%s", len(products), plural(len(products)), formatProductList(products))
	if len(products) > maxListedProducts {
		reply += "\n\n...and more!"
	}
	return &Result{
		Reply:   reply,
		Action:  &chat.Action{Type: chat.ActionSearch, Payload: products},
		Outcome: OutcomeSuccess,
	}, nil
}

// SimilarProductsExecutor recommends products close to the resolved product.
type SimilarProductsExecutor struct {
	catalog ProductFinder
	logger  *slog.Logger
}

func (e *SimilarProductsExecutor) Execute(ctx context.Context, params json.RawMessage, inv Invocation) (*Result, error) {
	args, err := DecodeSimilar(params)
	if err != nil {
		return nil, err
	}

	productID := resolveProductID(args.ProductID, inv.ProductID)
	if productID == "" {
		return &Result{Reply: replySimilarNeedsProduct, Outcome: OutcomeMissingProduct}, nil
	}

	products, err := e.catalog.GetSimilarProducts(ctx, productID)
	if err != nil {
		e.logger.ErrorContext(ctx, "similar products lookup failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()))
		return &Result{Reply: replySimilarFailed, Outcome: OutcomeFailed, ProductID: productID}, nil
	}
	if len(products) == 0 {
		return &Result{Reply: replySimilarEmpty, Outcome: OutcomeEmpty, ProductID: productID}, nil
	}

	// No "...and more!" suffix here, unlike search.
	return &Result{
		Reply:     "Here are some similar products:\n\n" + formatProductList(products),
		Action:    &chat.Action{Type: chat.ActionNavigate, Payload: SimilarPayload{SimilarProducts: products}},
		Outcome:   OutcomeSuccess,
		ProductID: productID,
	}, nil
}

func resolveProductID(fromArgs, fromTurn string) string {
	if fromArgs != "" {
		return fromArgs
	}
	return strings.TrimSpace(fromTurn)
}

func formatProductList(products []catalog.Product) string {
	n := min(len(products), maxListedProducts)
	lines := make([]string, 0, n)
	for i, p := range products[:n] {
		lines = append(lines, p.ListLine(i+1))
	}
	return strings.Join(lines, "\n")
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}

func pluralItems(n int) string {
	if n > 1 {
		return "items"
	}
	return "item"
}
