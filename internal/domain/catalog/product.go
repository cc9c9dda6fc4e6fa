// Package catalog is the product directory client: product lookups, filtered
// search and similar-product recommendations against the storefront backend.
package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Product is a read-only snapshot of a catalog item, fetched per request.
type Product struct {
	ProductID   string   `json:"product_id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Brand       string   `json:"brand,omitempty"`
	Rating      float64  `json:"rating"`
	Stock       int      `json:"stock"`
	Images      []string `json:"images,omitempty"`
}

// SearchFilters narrows a product search. Empty strings and nil prices are
// omitted; a zero MaxPrice also means no upper bound.
type SearchFilters struct {
	Title    string
	Category string
	Brand    string
	MinPrice *float64
	MaxPrice *float64
}

// FormatNumber renders prices and ratings without trailing zeros ("19.99", "20", "4.5").
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ContextBlock renders the product as the "Current Product Context" prompt section.
func (p Product) ContextBlock() string {
	description := p.Description
	if description == "" {
		description = "No description available"
	}
	brand := p.Brand
	if brand == "" {
		brand = "N/A"
	}

	var b strings.Builder
	b.WriteString("\nCurrent Product Context:\n")
	fmt.Fprintf(&b, "- Product ID: %s\n", p.ProductID)
	fmt.Fprintf(&b, "- Name: %s\n", p.Title)
	fmt.Fprintf(&b, "- Description: %s\n", description)
	fmt.Fprintf(&b, "- Price: $%s\n", FormatNumber(p.Price))
	fmt.Fprintf(&b, "- Category: %s\n", p.Category)
	fmt.Fprintf(&b, "- Brand: %s\n", brand)
	fmt.Fprintf(&b, "- Rating: %s/5\n", FormatNumber(p.Rating))
	fmt.Fprintf(&b, "- Stock: %d units available\n", p.Stock)
	return b.String()
}

// ListLine renders one numbered entry of a product list reply.
func (p Product) ListLine(index int) string {
	return fmt.Sprintf("%d. %s - $%s (Rating: %s/5)", index, p.Title, FormatNumber(p.Price), FormatNumber(p.Rating))
}
