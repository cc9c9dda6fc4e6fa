// Package cart is the cart mutation client. Authenticated users get a backend
// mutation; guests get a local payload the storefront applies to its own cart.
package cart

import (
	"context"
	"net/url"

	"github.com/matiasleandrokruk/shopassist/internal/infra/backend"
)

// Payload is the result of an add-to-cart attempt, returned to the UI as an action payload.
type Payload struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Success   *bool  `json:"success,omitempty"`
	IsGuest   bool   `json:"isGuest,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Succeeded reports whether the backend accepted the mutation.
func (p Payload) Succeeded() bool {
	return p.Success != nil && *p.Success
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Client mutates carts on the storefront backend.
type Client struct {
	backend *backend.Client
}

// NewClient creates a cart Client on top of a backend connection.
func NewClient(b *backend.Client) *Client {
	return &Client{backend: b}
}

// NormalizeQuantity maps an unspecified or zero quantity to 1.
func NormalizeQuantity(quantity int) int {
	if quantity == 0 {
		return 1
	}
	return quantity
}

// AddToCart POSTs /cart/{userID}. Failures never propagate as errors: they are
// reported through Success=false and Error so callers branch on the payload.
func (c *Client) AddToCart(ctx context.Context, userID, productID string, quantity int, authorization string) Payload {
	qty := NormalizeQuantity(quantity)
	body := addItemRequest{ProductID: productID, Quantity: qty}

	if err := c.backend.PostJSON(ctx, "/cart/"+url.PathEscape(userID), body, authorization, nil); err != nil {
		failed := false
		return Payload{ProductID: productID, Quantity: qty, Success: &failed, Error: err.Error()}
	}

	ok := true
	return Payload{ProductID: productID, Quantity: qty, Success: &ok}
}

// GuestCartPayload builds the local payload for sessions without a user id. No I/O.
func GuestCartPayload(productID string, quantity int) Payload {
	return Payload{ProductID: productID, Quantity: NormalizeQuantity(quantity), IsGuest: true}
}
