package tool

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/matiasleandrokruk/shopassist/internal/domain/cart"
	"github.com/matiasleandrokruk/shopassist/internal/domain/catalog"
)

// ProductFinder is the slice of the catalog client the handlers use.
type ProductFinder interface {
	SearchProducts(ctx context.Context, filters catalog.SearchFilters, authorization string) ([]catalog.Product, error)
	GetSimilarProducts(ctx context.Context, productID string) ([]catalog.Product, error)
}

// CartMutator is the slice of the cart client the handlers use.
type CartMutator interface {
	AddToCart(ctx context.Context, userID, productID string, quantity int, authorization string) cart.Payload
}

// BuiltinServices are the backends the built-in handlers dispatch to.
type BuiltinServices struct {
	Catalog ProductFinder
	Cart    CartMutator
	Logger  *slog.Logger
}

// NewBuiltinRegistry loads the embedded catalog and registers the three shop handlers.
func NewBuiltinRegistry(svc BuiltinServices) (*Registry, error) {
	defs, err := LoadCatalog()
	if err != nil {
		return nil, err
	}
	r := NewRegistry(defs)
	if err := RegisterBuiltinExecutors(r, svc); err != nil {
		return nil, err
	}
	if missing := r.Unbound(); len(missing) > 0 {
		return nil, fmt.Errorf("tool catalog entries without executor: %s", strings.Join(missing, ", "))
	}
	return r, nil
}

// RegisterBuiltinExecutors binds the shop handlers to r.
func RegisterBuiltinExecutors(r *Registry, svc BuiltinServices) error {
	logger := svc.Logger
	if logger == nil {
		logger = slog.Default()
	}

	executors := map[string]Executor{
		AddToCart:          &AddToCartExecutor{cart: svc.Cart, logger: logger},
		SearchProducts:     &SearchProductsExecutor{catalog: svc.Catalog, logger: logger},
		GetSimilarProducts: &SimilarProductsExecutor{catalog: svc.Catalog, logger: logger},
	}
	for _, name := range []string{AddToCart, SearchProducts, GetSimilarProducts} {
		if err := r.Register(name, executors[name]); err != nil {
			return err
		}
	}
	return nil
}
