package db

import (
	"path/filepath"
	"testing"
)

func TestDSN(t *testing.T) {
	got := dsn("/var/lib/lostfound.db")
	want := "/var/lib/lostfound.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)" +
		"&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_txlock=immediate"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	got = dsn("file:test.db?cache=shared")
	if got[:len("file:test.db?cache=shared&_pragma=")] != "file:test.db?cache=shared&_pragma=" {
		t.Errorf("expected pragmas appended with &, got %q", got)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	database := NewTestDB(t)

	if err := Migrate(database); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	var n int
	err := database.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table'
		 AND name IN ('users', 'items', 'matches', 'notifications', 'settings', 'revoked_tokens')`,
	).Scan(&n)
	if err != nil {
		t.Fatalf("counting tables: %v", err)
	}
	if n != 6 {
		t.Errorf("expected 6 tables, got %d", n)
	}
}

func TestOpenFileEnablesForeignKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lostfound.db")
	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	if err := Migrate(database); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	// Two pooled connections must both see the pragma.
	conn1, err := database.Conn(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	defer conn1.Close()
	conn2, err := database.Conn(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	defer conn2.Close()

	var fk int
	if err := conn2.QueryRowContext(t.Context(), "PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatal(err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1 on second connection, got %d", fk)
	}

	var mode string
	if err := conn1.QueryRowContext(t.Context(), "PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if mode != "wal" {
		t.Errorf("expected journal_mode wal, got %q", mode)
	}
}
