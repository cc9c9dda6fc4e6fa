package audit

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/matiasleandrokruk/shopassist/internal/infra/eventbus"
	"github.com/matiasleandrokruk/shopassist/internal/infra/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.Open(context.Background(), sqlite.MemoryPath)
	if err != nil {
		t.Fatalf("sqlite.Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestService(t *testing.T) *AuditService {
	t.Helper()
	return NewAuditService(setupTestDB(t), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAuditService_LogAndListRecent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	events := []DispatchEvent{
		{ToolName: "search_products", Outcome: "success", CreatedAt: base},
		{ToolName: "add_to_cart", Outcome: "guest", Guest: true, ProductID: "P1", CreatedAt: base.Add(time.Second)},
		{ToolName: "teleport", Outcome: "unknown_tool", Detail: "no executor", CreatedAt: base.Add(2 * time.Second)},
	}
	for _, e := range events {
		if err := svc.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	got, err := svc.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	if got[0].ToolName != "teleport" || got[2].ToolName != "search_products" {
		t.Errorf("expected newest first, got %s..%s", got[0].ToolName, got[2].ToolName)
	}
	if !got[1].Guest || got[1].ProductID != "P1" {
		t.Errorf("guest row not round-tripped: %+v", got[1])
	}
	if got[0].ID == "" || !got[0].CreatedAt.Equal(base.Add(2*time.Second)) {
		t.Errorf("id/timestamp not populated: %+v", got[0])
	}
}

func TestAuditService_Log_RequiresToolAndOutcome(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	if err := svc.Log(context.Background(), DispatchEvent{ToolName: "add_to_cart"}); err == nil {
		t.Error("expected error for missing outcome")
	}
}

func TestAuditService_ListRecent_ClampsLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(t)
	for i := 0; i < 3; i++ {
		if err := svc.Log(ctx, DispatchEvent{ToolName: "search_products", Outcome: "empty"}); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	got, err := svc.ListRecent(ctx, 2)
	if err != nil || len(got) != 2 {
		t.Fatalf("ListRecent(2) = %d rows, %v", len(got), err)
	}
	got, err = svc.ListRecent(ctx, 0)
	if err != nil || len(got) != 3 {
		t.Fatalf("ListRecent(0) = %d rows, %v", len(got), err)
	}
}

func TestAuditService_CountByOutcome(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(t)
	for _, outcome := range []string{"success", "success", "failed"} {
		if err := svc.Log(ctx, DispatchEvent{ToolName: "add_to_cart", Outcome: outcome}); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	counts, err := svc.CountByOutcome(ctx)
	if err != nil {
		t.Fatalf("CountByOutcome failed: %v", err)
	}
	if counts["success"] != 2 || counts["failed"] != 1 {
		t.Errorf("unexpected counts %v", counts)
	}
}

func TestAuditService_Start_PersistsBusEvents(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	bus := eventbus.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := svc.Start(ctx, bus)

	// Subscription happens inside Start, so nothing published afterwards is lost.
	bus.Publish(TopicToolUnknown, DispatchEvent{ID: "evt-unknown", ToolName: "teleport", Outcome: "unknown_tool"})
	deadline := time.Now().Add(2 * time.Second)
	for {
		rows, _ := svc.ListRecent(context.Background(), 10)
		if len(rows) == 1 && rows[0].ID == "evt-unknown" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("event published right after Start was never persisted")
		}
		time.Sleep(10 * time.Millisecond)
	}

	bus.Publish(TopicToolDispatched, DispatchEvent{ToolName: "search_products", Outcome: "success"})
	bus.Publish(TopicToolDispatched, "not an event")

	deadline = time.Now().Add(2 * time.Second)
	for {
		counts, _ := svc.CountByOutcome(context.Background())
		if counts["success"] == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("dispatch event was never persisted, counts=%v", counts)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := bus.Close(); err != nil {
		t.Fatalf("bus.Close failed: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop after bus was closed")
	}
}
