package migrate

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCreateSQLMigrationSortsAfterNewestVersion(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "20261002090600_create_notifications.sql")
	if err := os.WriteFile(existing, []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("seed migration: %v", err)
	}

	behind := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	path, err := createSQLMigration(dir, "add_slot_zones", behind)
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if got := filepath.Base(path); got != "20261002090601_add_slot_zones.sql" {
		t.Fatalf("expected version after newest migration, got %q", got)
	}

	path, err = createSQLMigration(dir, "add_order_notes", time.Date(2026, 10, 2, 9, 6, 59, 0, time.UTC))
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if got := filepath.Base(path); got != "20261002090659_add_order_notes.sql" {
		t.Fatalf("expected clock version when ahead, got %q", got)
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("created migrations should validate: %v", err)
	}
}

func TestNextVersionRollsOverMinute(t *testing.T) {
	if got := nextVersion(20261002090959); got != 20261002091000 {
		t.Fatalf("expected 20261002091000, got %d", got)
	}
}
