package kv

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openBackends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := Open(DriverSQLite, filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	bolt, err := Open(DriverBolt, filepath.Join(dir, "test.bolt"))
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}

	mem, err := Open(DriverMemory, "")
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}

	return map[string]Store{
		DriverSQLite: sqlite,
		DriverBolt:   bolt,
		DriverMemory: mem,
	}
}

func TestBackends(t *testing.T) {
	ctx := context.Background()

	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Get(ctx, "motivations"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound on empty store, got %v", err)
			}

			if err := store.Put(ctx, "motivations", []byte(`[1]`)); err != nil {
				t.Fatalf("put: %v", err)
			}
			if err := store.Put(ctx, "motivations", []byte(`[1,2]`)); err != nil {
				t.Fatalf("overwrite: %v", err)
			}

			got, err := store.Get(ctx, "motivations")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if string(got) != `[1,2]` {
				t.Fatalf("expected last write to win, got %s", got)
			}

			if err := store.Delete(ctx, "motivations"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := store.Get(ctx, "motivations"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound after delete, got %v", err)
			}
			if err := store.Delete(ctx, "never-written"); err != nil {
				t.Fatalf("delete of missing key should be a no-op, got %v", err)
			}
		})
	}
}

func TestBoltPersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.bolt")

	first, err := NewBolt(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := first.Put(ctx, "app_settings", []byte(`{"apiKey":"k"}`)); err != nil {
		t.Fatalf("put: %v", err)
	}

	second, err := NewBolt(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := second.Get(ctx, "app_settings")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"apiKey":"k"}` {
		t.Fatalf("unexpected value %s", got)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open("redis", ""); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
