package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/matiasleandrokruk/shopassist/internal/infra/backend"
)

const (
	searchLimit  = 10
	similarLimit = 5

	// similar products are priced within spreadNum/spreadDen of the reference.
	spreadNum = 3
	spreadDen = 10
)

// ErrProductNotFound is returned when the backend has no product with the requested id.
var ErrProductNotFound = errors.New("catalog: product not found")

// UpstreamError wraps any other backend failure (transport, non-2xx, bad payload).
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("catalog %s: upstream error: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

type productEnvelope struct {
	Product *Product `json:"product"`
}

type productsEnvelope struct {
	Products []Product `json:"products"`
}

// Client is the product directory client.
type Client struct {
	backend *backend.Client
}

// NewClient creates a catalog Client on top of a backend connection.
func NewClient(b *backend.Client) *Client {
	return &Client{backend: b}
}

// GetProductDetails fetches GET /product/{id}. No retry.
func (c *Client) GetProductDetails(ctx context.Context, productID string) (*Product, error) {
	var env productEnvelope
	err := c.backend.GetJSON(ctx, "/product/"+url.PathEscape(productID), nil, "", &env)
	if backend.IsStatus(err, http.StatusNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	if err != nil {
		return nil, &UpstreamError{Op: "get product", Err: err}
	}
	if env.Product == nil {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	return env.Product, nil
}

// SearchProducts queries GET /product with the default paging/sorting and the given filters.
// authorization is forwarded to the backend when non-empty.
func (c *Client) SearchProducts(ctx context.Context, filters SearchFilters, authorization string) ([]Product, error) {
	q := baseQuery(searchLimit)
	q.Set("minPrice", "0")
	if filters.Title != "" {
		q.Set("title", filters.Title)
	}
	if filters.Category != "" {
		q.Set("categories", filters.Category)
	}
	if filters.Brand != "" {
		q.Set("brand", filters.Brand)
	}
	if filters.MinPrice != nil {
		q.Set("minPrice", FormatNumber(*filters.MinPrice))
	}
	if filters.MaxPrice != nil && *filters.MaxPrice > 0 {
		q.Set("maxPrice", FormatNumber(*filters.MaxPrice))
	}

	var env productsEnvelope
	if err := c.backend.GetJSON(ctx, "/product", q, authorization, &env); err != nil {
		return nil, &UpstreamError{Op: "search products", Err: err}
	}
	return env.Products, nil
}

// GetSimilarProducts returns up to five products in the reference product's
// category priced within 30% of it, never including the reference product.
func (c *Client) GetSimilarProducts(ctx context.Context, productID string) ([]Product, error) {
	ref, err := c.GetProductDetails(ctx, productID)
	if err != nil {
		return nil, err
	}

	minPrice, maxPrice := PriceBand(ref.Price)
	q := baseQuery(similarLimit)
	q.Set("categories", ref.Category)
	q.Set("minPrice", FormatNumber(minPrice))
	q.Set("maxPrice", FormatNumber(maxPrice))

	var env productsEnvelope
	if err := c.backend.GetJSON(ctx, "/product", q, "", &env); err != nil {
		return nil, &UpstreamError{Op: "similar products", Err: err}
	}

	similar := make([]Product, 0, len(env.Products))
	for _, p := range env.Products {
		if p.ProductID == ref.ProductID || p.Category != ref.Category ||
			p.Price < minPrice || p.Price > maxPrice {
			continue
		}
		similar = append(similar, p)
	}
	return similar, nil
}

// PriceBand returns the [max(0, 0.7p), 1.3p] window used for recommendations.
func PriceBand(price float64) (float64, float64) {
	spread := price * spreadNum / spreadDen
	return math.Max(0, price-spread), price + spread
}

func baseQuery(limit int) url.Values {
	q := url.Values{}
	q.Set("offset", "0")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("sortBy", "rating")
	q.Set("order", "DESC")
	q.Set("minRating", "0")
	return q
}
