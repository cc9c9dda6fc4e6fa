package sqlite_test

import (
	"context"
	"testing"

	"github.com/matiasleandrokruk/shopassist/internal/infra/sqlite"
)

func TestMigrate_RunsAllMigrations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := mustOpenDB(t)

	if err := sqlite.MigrateUp(ctx, db); err != nil {
		t.Fatalf("MigrateUp() error = %v; want nil", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("SELECT COUNT(*) FROM schema_migrations error = %v", err)
	}
	if count == 0 {
		t.Error("schema_migrations has 0 rows after MigrateUp; want > 0")
	}
}

// TestMigrate_Idempotent verifies that re-running MigrateUp applies nothing new.
func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(ctx, db); err != nil {
		t.Fatalf("MigrateUp() first run error = %v", err)
	}

	var before int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&before); err != nil {
		t.Fatalf("count before: %v", err)
	}

	if err := sqlite.MigrateUp(ctx, db); err != nil {
		t.Fatalf("MigrateUp() second run error = %v; want nil", err)
	}

	var after int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&after); err != nil {
		t.Fatalf("count after: %v", err)
	}
	if after != before {
		t.Errorf("schema_migrations count changed from %d to %d; want unchanged", before, after)
	}
}

func TestMigrate_ToolDispatchOutcomeRequired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(ctx, db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	_, err := db.Exec(`INSERT INTO tool_dispatch (id, tool_name, outcome, created_at) VALUES ('a', 'search_products', NULL, '2026-01-01T00:00:00Z')`)
	if err == nil {
		t.Error("expected NOT NULL violation for outcome")
	}
	_, err = db.Exec(`INSERT INTO tool_dispatch (id, tool_name, outcome, guest, created_at) VALUES ('b', 'add_to_cart', 'guest', 2, '2026-01-01T00:00:00Z')`)
	if err == nil {
		t.Error("expected CHECK violation for guest flag")
	}
}

func TestMigrate_Version(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := mustOpenDB(t)

	version, err := sqlite.MigrationVersion(ctx, db)
	if err != nil {
		t.Fatalf("MigrationVersion() error = %v", err)
	}
	if version != 0 {
		t.Errorf("MigrationVersion() = %d; want 0 on fresh DB", version)
	}

	if err := sqlite.MigrateUp(ctx, db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}
	version, err = sqlite.MigrationVersion(ctx, db)
	if err != nil {
		t.Fatalf("MigrationVersion() error = %v; want nil", err)
	}
	if version != 1 {
		t.Errorf("MigrationVersion() = %d; want 1", version)
	}
}
