package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matiasleandrokruk/shopassist/internal/domain/audit"
)

type auditReaderStub struct {
	events   []audit.DispatchEvent
	counts   map[string]int
	err      error
	countErr error
	gotLimit int
}

func (s *auditReaderStub) ListRecent(_ context.Context, limit int) ([]audit.DispatchEvent, error) {
	s.gotLimit = limit
	return s.events, s.err
}

func (s *auditReaderStub) CountByOutcome(context.Context) (map[string]int, error) {
	return s.counts, s.countErr
}

func TestAuditHandler_ListDispatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query     string
		wantLimit int
	}{
		{query: "", wantLimit: audit.DefaultListLimit},
		{query: "?limit=5", wantLimit: 5},
		{query: "?limit=-1", wantLimit: audit.DefaultListLimit},
		{query: "?limit=100000", wantLimit: audit.MaxListLimit},
	}
	for _, tt := range tests {
		stub := &auditReaderStub{events: []audit.DispatchEvent{{ID: "a", ToolName: "search_products", Outcome: "success"}}}
		rr := httptest.NewRecorder()
		NewAuditHandler(stub, discardLogger()).ListDispatches(rr, httptest.NewRequest(http.MethodGet, "/audit/tool-dispatches"+tt.query, nil))

		if rr.Code != http.StatusOK {
			t.Fatalf("%q: expected 200, got %d", tt.query, rr.Code)
		}
		if stub.gotLimit != tt.wantLimit {
			t.Errorf("%q: limit = %d, want %d", tt.query, stub.gotLimit, tt.wantLimit)
		}
		var body struct {
			Data []audit.DispatchEvent `json:"data"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || len(body.Data) != 1 {
			t.Errorf("%q: unexpected body %s", tt.query, rr.Body.String())
		}
	}
}

func TestAuditHandler_Error(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	NewAuditHandler(&auditReaderStub{err: errors.New("disk full")}, discardLogger()).
		ListDispatches(rr, httptest.NewRequest(http.MethodGet, "/audit/tool-dispatches", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

func TestAuditHandler_MetaCarriesOutcomeCounts(t *testing.T) {
	t.Parallel()

	stub := &auditReaderStub{counts: map[string]int{"success": 3, "unknown_tool": 1}}
	rr := httptest.NewRecorder()
	NewAuditHandler(stub, discardLogger()).ListDispatches(rr, httptest.NewRequest(http.MethodGet, "/audit/tool-dispatches", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body struct {
		Meta struct {
			Outcomes map[string]int `json:"outcomes"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Meta.Outcomes["success"] != 3 || body.Meta.Outcomes["unknown_tool"] != 1 {
		t.Errorf("outcomes = %v", body.Meta.Outcomes)
	}
}

func TestAuditHandler_CountError(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	NewAuditHandler(&auditReaderStub{countErr: errors.New("locked")}, discardLogger()).
		ListDispatches(rr, httptest.NewRequest(http.MethodGet, "/audit/tool-dispatches", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}
