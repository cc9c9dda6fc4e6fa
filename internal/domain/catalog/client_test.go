package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matiasleandrokruk/shopassist/internal/infra/backend"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(backend.NewClient(srv.URL, 5*time.Second))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func TestGetProductDetails_Success(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/product/P1" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, map[string]any{"product": Product{ProductID: "P1", Title: "Trail Shoe", Price: 80, Category: "shoes", Rating: 4.5, Stock: 3}})
	})

	p, err := c.GetProductDetails(context.Background(), "P1")
	if err != nil {
		t.Fatalf("GetProductDetails failed: %v", err)
	}
	if p.Title != "Trail Shoe" || p.Price != 80 {
		t.Errorf("unexpected product %+v", p)
	}
}

func TestGetProductDetails_NotFound(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	})

	_, err := c.GetProductDetails(context.Background(), "missing")
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestGetProductDetails_ServerError_IsUpstreamError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.GetProductDetails(context.Background(), "P1")
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if errors.Is(err, ErrProductNotFound) {
		t.Error("500 must not be reported as not found")
	}
}

func TestSearchProducts_DefaultsAndOmittedFilters(t *testing.T) {
	t.Parallel()

	var gotQuery map[string][]string
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, map[string]any{"products": []Product{{ProductID: "a"}, {ProductID: "b"}}})
	})

	products, err := c.SearchProducts(context.Background(), SearchFilters{Category: "shoes"}, "Bearer t")
	if err != nil {
		t.Fatalf("SearchProducts failed: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}

	want := map[string]string{
		"offset": "0", "limit": "10", "sortBy": "rating", "order": "DESC",
		"minPrice": "0", "minRating": "0", "categories": "shoes",
	}
	for k, v := range want {
		if got := gotQuery[k]; len(got) != 1 || got[0] != v {
			t.Errorf("query %s = %v, want [%s]", k, got, v)
		}
	}
	for _, k := range []string{"title", "brand", "maxPrice"} {
		if _, ok := gotQuery[k]; ok {
			t.Errorf("unset filter %s must be omitted", k)
		}
	}
	if gotAuth != "Bearer t" {
		t.Errorf("Authorization not forwarded, got %q", gotAuth)
	}
}

func TestSearchProducts_PriceFiltersOverrideDefault(t *testing.T) {
	t.Parallel()

	var rawQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		writeJSON(w, map[string]any{"products": []Product{}})
	})

	lo, hi := 10.5, 99.0
	if _, err := c.SearchProducts(context.Background(), SearchFilters{MinPrice: &lo, MaxPrice: &hi}, ""); err != nil {
		t.Fatalf("SearchProducts failed: %v", err)
	}
	if strings.Count(rawQuery, "minPrice=") != 1 || !strings.Contains(rawQuery, "minPrice=10.5") {
		t.Errorf("expected a single minPrice=10.5, got %q", rawQuery)
	}
	if !strings.Contains(rawQuery, "maxPrice=99") {
		t.Errorf("expected maxPrice=99, got %q", rawQuery)
	}
}

func TestSearchProducts_ZeroMaxPriceMeansNoUpperBound(t *testing.T) {
	t.Parallel()

	var rawQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		writeJSON(w, map[string]any{"products": []Product{}})
	})

	zero := 0.0
	if _, err := c.SearchProducts(context.Background(), SearchFilters{Title: "lamp", MaxPrice: &zero}, ""); err != nil {
		t.Fatalf("SearchProducts failed: %v", err)
	}
	if strings.Contains(rawQuery, "maxPrice") {
		t.Errorf("maxPrice=0 must not be sent, got %q", rawQuery)
	}
}

func TestSearchProducts_Failure_IsUpstreamError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})

	_, err := c.SearchProducts(context.Background(), SearchFilters{}, "")
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
}

func TestGetSimilarProducts_ExcludesReferenceAndStaysInBand(t *testing.T) {
	t.Parallel()

	ref := Product{ProductID: "P1", Title: "Ref", Price: 100, Category: "audio", Rating: 4}
	var similarQuery map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/product/P1":
			writeJSON(w, map[string]any{"product": ref})
		case "/product":
			similarQuery = r.URL.Query()
			writeJSON(w, map[string]any{"products": []Product{
				ref,
				{ProductID: "A", Price: 75, Category: "audio"},
				{ProductID: "B", Price: 130, Category: "audio"},
				{ProductID: "C", Price: 131, Category: "audio"},
				{ProductID: "D", Price: 90, Category: "video"},
			}})
		default:
			http.NotFound(w, r)
		}
	})

	got, err := c.GetSimilarProducts(context.Background(), "P1")
	if err != nil {
		t.Fatalf("GetSimilarProducts failed: %v", err)
	}

	ids := make([]string, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ProductID)
		if p.ProductID == "P1" {
			t.Error("reference product must be excluded")
		}
		if p.Price < 70 || p.Price > 130 {
			t.Errorf("product %s price %v outside band", p.ProductID, p.Price)
		}
	}
	if strings.Join(ids, ",") != "A,B" {
		t.Errorf("unexpected similar ids %v", ids)
	}

	want := map[string]string{"limit": "5", "categories": "audio", "minPrice": "70", "maxPrice": "130", "sortBy": "rating", "order": "DESC"}
	for k, v := range want {
		if got := similarQuery[k]; len(got) != 1 || got[0] != v {
			t.Errorf("query %s = %v, want [%s]", k, got, v)
		}
	}
}

func TestGetSimilarProducts_ReferenceMissing_ReturnsNotFound(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	if _, err := c.GetSimilarProducts(context.Background(), "gone"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestPriceBand_FlooredAtZero(t *testing.T) {
	t.Parallel()

	lo, hi := PriceBand(0)
	if lo != 0 || hi != 0 {
		t.Errorf("PriceBand(0) = %v, %v", lo, hi)
	}
	lo, hi = PriceBand(10)
	if lo != 7 || hi != 13 {
		t.Errorf("PriceBand(10) = %v, %v", lo, hi)
	}
}

func TestProduct_ContextBlock_Fallbacks(t *testing.T) {
	t.Parallel()

	block := Product{ProductID: "P1", Title: "Lamp", Price: 19.99, Category: "home", Rating: 4.5, Stock: 7}.ContextBlock()

	for _, want := range []string{
		"Current Product Context:",
		"- Product ID: P1",
		"- Description: No description available",
		"- Price: $19.99",
		"- Brand: N/A",
		"- Rating: 4.5/5",
		"- Stock: 7 units available",
	} {
		if !strings.Contains(block, want) {
			t.Errorf("context block missing %q:\n%s", want, block)
		}
	}
}

func TestProduct_ListLine(t *testing.T) {
	t.Parallel()

	got := Product{Title: "Mug", Price: 12, Rating: 4.8}.ListLine(3)
	if got != "3. Mug - $12 (Rating: 4.8/5)" {
		t.Errorf("ListLine = %q", got)
	}
}
