package changelog

import (
	"context"
	"testing"
	"time"
)

func TestSQLiteStorePersistQuery(t *testing.T) {
	store, err := NewSQLiteStore("file:changelog_test.db?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()

	rec := Record{
		Version:   1,
		Timestamp: time.Now(),
		Mode:      "Insert",
		TargetID:  1,
		MapName:   "level1",
		Payload:   []byte(`{"trajectory":"stub"}`),
	}
	if err := store.Append(context.Background(), rec); err != nil {
		t.Fatalf("append: %v", err)
	}

	out, err := store.Query(context.Background(), Query{AfterVersion: 0})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 record, got %d", len(out))
	}
	if out[0].Mode != "Insert" || out[0].MapName != "level1" {
		t.Fatalf("unexpected record: %+v", out[0])
	}
}

func TestSQLiteStoreQueryRespectsWatermark(t *testing.T) {
	store, err := NewSQLiteStore("file:changelog_test_watermark.db?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()

	for v := uint64(1); v <= 3; v++ {
		rec := Record{Version: v, Timestamp: time.Now(), Mode: "Delay", MapName: "level1"}
		if err := store.Append(context.Background(), rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	out, err := store.Query(context.Background(), Query{AfterVersion: 1})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 records after watermark 1, got %d", len(out))
	}
	if out[0].Version != 2 || out[1].Version != 3 {
		t.Fatalf("expected ascending version order, got %+v", out)
	}
}
