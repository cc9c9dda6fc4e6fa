package tool

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/matiasleandrokruk/shopassist/internal/domain/catalog"
)

// ToolArgumentError reports model-produced arguments that do not fit a tool's shape.
type ToolArgumentError struct {
	Tool   string
	Field  string
	Reason string
}

func (e *ToolArgumentError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("tool %s: invalid arguments: %s", e.Tool, e.Reason)
	}
	return fmt.Sprintf("tool %s: invalid argument %q: %s", e.Tool, e.Field, e.Reason)
}

// AddToCartArgs are the decoded add_to_cart arguments.
type AddToCartArgs struct {
	ProductID string   `json:"product_id,omitempty"`
	Quantity  *float64 `json:"quantity,omitempty"`
}

// SearchArgs are the decoded search_products arguments.
type SearchArgs struct {
	Title    string   `json:"title,omitempty" jsonschema:"Product title to search for"`
	Category string   `json:"category,omitempty" jsonschema:"Product category"`
	Brand    string   `json:"brand,omitempty" jsonschema:"Product brand"`
	MinPrice *float64 `json:"minPrice,omitempty" jsonschema:"Minimum price"`
	MaxPrice *float64 `json:"maxPrice,omitempty" jsonschema:"Maximum price"`
}

// SimilarArgs are the decoded get_similar_products arguments.
type SimilarArgs struct {
	ProductID string `json:"product_id" jsonschema:"The UUID of the product to find similar items for"`
}

// DecodeAddToCart decodes and checks add_to_cart arguments. The returned
// quantity is 0 when the model did not specify one.
func DecodeAddToCart(raw json.RawMessage) (AddToCartArgs, int, error) {
	var args AddToCartArgs
	if err := decodeArgs(AddToCart, raw, &args); err != nil {
		return args, 0, err
	}
	args.ProductID = strings.TrimSpace(args.ProductID)
	if args.Quantity == nil {
		return args, 0, nil
	}

	q := *args.Quantity
	if q < 0 || q != math.Trunc(q) {
		return args, 0, &ToolArgumentError{Tool: AddToCart, Field: "quantity", Reason: "must be a non-negative whole number"}
	}
	if q > math.MaxInt32 {
		return args, 0, &ToolArgumentError{Tool: AddToCart, Field: "quantity", Reason: "is too large"}
	}
	return args, int(q), nil
}

// DecodeSearch decodes and checks search_products arguments.
func DecodeSearch(raw json.RawMessage) (SearchArgs, error) {
	var args SearchArgs
	if err := decodeArgs(SearchProducts, raw, &args); err != nil {
		return args, err
	}
	return args, args.validate()
}

func (a SearchArgs) validate() error {
	if a.MinPrice != nil && *a.MinPrice < 0 {
		return &ToolArgumentError{Tool: SearchProducts, Field: "minPrice", Reason: "must not be negative"}
	}
	if a.MaxPrice != nil && *a.MaxPrice < 0 {
		return &ToolArgumentError{Tool: SearchProducts, Field: "maxPrice", Reason: "must not be negative"}
	}
	if a.MinPrice != nil && a.MaxPrice != nil && *a.MaxPrice > 0 && *a.MinPrice > *a.MaxPrice {
		return &ToolArgumentError{Tool: SearchProducts, Field: "minPrice", Reason: "must not exceed maxPrice"}
	}
	return nil
}

// Filters converts the arguments into catalog search filters.
func (a SearchArgs) Filters() catalog.SearchFilters {
	return catalog.SearchFilters{
		Title:    strings.TrimSpace(a.Title),
		Category: strings.TrimSpace(a.Category),
		Brand:    strings.TrimSpace(a.Brand),
		MinPrice: a.MinPrice,
		MaxPrice: a.MaxPrice,
	}
}

// DecodeSimilar decodes get_similar_products arguments.
func DecodeSimilar(raw json.RawMessage) (SimilarArgs, error) {
	var args SimilarArgs
	if err := decodeArgs(GetSimilarProducts, raw, &args); err != nil {
		return args, err
	}
	args.ProductID = strings.TrimSpace(args.ProductID)
	return args, nil
}

// decodeArgs unmarshals a JSON object into out. Empty input and null are
// treated as an empty object; any other non-object or mistyped field fails.
func decodeArgs(toolName string, raw json.RawMessage, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] != '{' {
		return &ToolArgumentError{Tool: toolName, Reason: "arguments must be a JSON object"}
	}

	if err := json.Unmarshal(trimmed, out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &ToolArgumentError{Tool: toolName, Field: typeErr.Field, Reason: "expected " + typeErr.Type.String()}
		}
		return &ToolArgumentError{Tool: toolName, Reason: "malformed JSON"}
	}
	return nil
}
