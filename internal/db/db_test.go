package db

import (
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestOpenAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "geo.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	// Second run must be a no-op.
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate again: %v", err)
	}

	for _, table := range []string{"users", "results"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
	var applied int
	if err := db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&applied); err != nil || applied != 1 {
		t.Fatalf("applied = %d, err = %v", applied, err)
	}
}

func TestMigrate_FailingScriptRollsBack(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "geo.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	fsys := fstest.MapFS{
		"migrations/001_ok.sql":  {Data: []byte(`CREATE TABLE a (id INTEGER);`)},
		"migrations/002_bad.sql": {Data: []byte(`CREATE TABLE b (;`)},
	}
	if err := migrate(db, fsys); err == nil {
		t.Fatal("expected an error from the broken migration")
	}
	var n int
	_ = db.QueryRow(`SELECT COUNT(1) FROM _migrations WHERE name='002_bad.sql'`).Scan(&n)
	if n != 0 {
		t.Fatal("failed migration must not be recorded")
	}
	_ = db.QueryRow(`SELECT COUNT(1) FROM _migrations WHERE name='001_ok.sql'`).Scan(&n)
	if n != 1 {
		t.Fatal("successful migration should be recorded")
	}
}
