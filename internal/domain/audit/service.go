// Package audit persists tool-dispatch events to sqlite. Rows are append-only:
// there is no update or delete path.
package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/matiasleandrokruk/shopassist/internal/infra/eventbus"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// AuditService records and lists tool dispatch events.
//
//nolint:revive // name kept for symmetry with the service constructors
type AuditService struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewAuditService creates a service over an already-migrated database.
func NewAuditService(db *sql.DB, logger *slog.Logger) *AuditService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditService{db: db, logger: logger}
}

// Log appends one event. Missing ids and timestamps are filled in.
func (s *AuditService) Log(ctx context.Context, event DispatchEvent) error {
	if event.ToolName == "" || event.Outcome == "" {
		return errors.New("audit: tool name and outcome are required")
	}
	if event.ID == "" {
		event.ID = generateID()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	guest := 0
	if event.Guest {
		guest = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tool_dispatch (id, request_id, tool_name, outcome, guest, product_id, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		event.ID,
		event.RequestID,
		event.ToolName,
		event.Outcome,
		guest,
		event.ProductID,
		event.Detail,
		event.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("audit: insert %s: %w", event.ID, err)
	}
	return nil
}

// ListRecent returns the newest events first. limit is clamped to [1, MaxListLimit].
func (s *AuditService) ListRecent(ctx context.Context, limit int) ([]DispatchEvent, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, tool_name, outcome, guest, product_id, detail, created_at
		FROM tool_dispatch
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("audit: list: %w", err)
	}
	defer rows.Close()

	out := make([]DispatchEvent, 0, limit)
	for rows.Next() {
		var (
			e         DispatchEvent
			guest     int
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.RequestID, &e.ToolName, &e.Outcome, &guest, &e.ProductID, &e.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("audit: scan: %w", err)
		}
		e.Guest = guest == 1
		if ts, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			e.CreatedAt = ts
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: list: %w", err)
	}
	return out, nil
}

// CountByOutcome returns how many events were recorded per outcome.
func (s *AuditService) CountByOutcome(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT outcome, COUNT(*) FROM tool_dispatch GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("audit: count: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			outcome string
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("audit: count scan: %w", err)
		}
		out[outcome] = n
	}
	return out, rows.Err()
}

// Start subscribes to the dispatch topics before returning, then persists
// events in the background until ctx is cancelled or the bus is closed.
// The returned channel is closed when the consumer stops. Persist failures
// are logged, not fatal.
func (s *AuditService) Start(ctx context.Context, bus eventbus.EventBus) <-chan struct{} {
	dispatched := bus.Subscribe(TopicToolDispatched)
	unknown := bus.Subscribe(TopicToolUnknown)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.consume(ctx, dispatched, unknown)
	}()
	return done
}

func (s *AuditService) consume(ctx context.Context, dispatched, unknown <-chan eventbus.Event) {
	for dispatched != nil || unknown != nil {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-dispatched:
			if !ok {
				dispatched = nil
				continue
			}
			s.persist(ctx, evt)
		case evt, ok := <-unknown:
			if !ok {
				unknown = nil
				continue
			}
			s.persist(ctx, evt)
		}
	}
}

func (s *AuditService) persist(ctx context.Context, evt eventbus.Event) {
	event, ok := evt.Payload.(DispatchEvent)
	if !ok {
		s.logger.Warn("audit: unexpected payload", slog.String("topic", evt.Topic))
		return
	}
	if err := s.Log(ctx, event); err != nil {
		s.logger.Error("audit: persist failed", slog.String("tool", event.ToolName), slog.String("error", err.Error()))
	}
}

func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
