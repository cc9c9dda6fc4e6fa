package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestClient_GetJSON_ForwardsQueryAndAuthorization(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/product" || r.URL.Query().Get("limit") != "10" {
			http.Error(w, "unexpected request", http.StatusBadRequest)
			return
		}
		if r.Header.Get("Authorization") != "Bearer abc" {
			http.Error(w, "missing auth", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", 5*time.Second)
	var out struct {
		OK bool `json:"ok"`
	}
	err := c.GetJSON(context.Background(), "/product", url.Values{"limit": {"10"}}, "Bearer abc", &out)
	if err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if !out.OK {
		t.Error("expected ok=true")
	}
}

func TestClient_PostJSON_SendsBody(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		json.NewDecoder(r.Body).Decode(&got) //nolint:errcheck
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	if err := c.PostJSON(context.Background(), "/cart/u1", map[string]any{"quantity": 2}, "", nil); err != nil {
		t.Fatalf("PostJSON failed: %v", err)
	}
	if got["quantity"] != float64(2) {
		t.Errorf("server saw body %v", got)
	}
}

func TestClient_NonSuccessStatus_ReturnsStatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	err := c.GetJSON(context.Background(), "/product/x", nil, "", &struct{}{})
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if !IsStatus(err, http.StatusNotFound) {
		t.Errorf("expected 404 StatusError, got %v", err)
	}
	if IsStatus(err, http.StatusInternalServerError) {
		t.Error("IsStatus matched the wrong code")
	}
}
