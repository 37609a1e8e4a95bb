// File path: internal/record/sqlite/store_test.go
package sqlite

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/nicodishanthj/semmatch/internal/record"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	rec := record.Record{"code": "0006", "name": "大山楂颗粒"}
	if err := store.Put(ctx, "0006", rec); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := store.Get(ctx, "0006")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, rec) {
		t.Fatalf("expected %v, got %v", rec, got)
	}

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing record: ok=%v err=%v", ok, err)
	}
}

func TestStorePutReplaces(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "r1", record.Record{"name": "first"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(ctx, "r1", record.Record{"name": "second"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, ok, err := store.Get(ctx, "r1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got["name"] != "second" {
		t.Fatalf("expected replacement, got %v", got)
	}
	ids, err := store.IDs(ctx)
	if err != nil {
		t.Fatalf("ids: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected 1 id, got %v", ids)
	}
}

func TestStoreDelete(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "r1", record.Record{"name": "x"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Delete(ctx, "r1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "r1"); ok {
		t.Fatal("expected record deleted")
	}
}
