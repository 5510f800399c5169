package storage

import (
	"context"
	"testing"
	"time"

	"apigw-sim/internal/query"
)

func TestMemoryStagedWritesInvisibleUntilCommit(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	writer, err := store.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer store.Release(writer)

	reader, err := store.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer store.Release(reader)

	if _, _, err := store.Write(ctx, writer, "tenants", nil, Payload{}.Set("name", "acme"), nil); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// The writer sees its own staged row, the reader does not.
	tuples, err := store.Read(ctx, writer, "tenants", query.Eq("name", "acme"), query.Columns("name"))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(tuples) != 1 {
		t.Fatalf("Expected writer to see 1 staged row, got %d", len(tuples))
	}

	tuples, err = store.Read(ctx, reader, "tenants", query.Eq("name", "acme"), query.Columns("name"))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(tuples) != 0 {
		t.Fatalf("Expected reader to see 0 rows before commit, got %d", len(tuples))
	}

	if err := store.Commit(ctx, writer); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	tuples, err = store.Read(ctx, reader, "tenants", query.Eq("name", "acme"), query.Columns("name"))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(tuples) != 1 {
		t.Fatalf("Expected reader to see 1 row after commit, got %d", len(tuples))
	}
}

func TestMemoryRollbackDiscardsStagedWrites(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	h, err := store.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer store.Release(h)

	if _, _, err := store.Write(ctx, h, "tenants", nil, Payload{}.Set("name", "acme"), nil); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := store.Rollback(ctx, h); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}

	tuples, err := store.Read(ctx, h, "tenants", query.All(), query.Columns("name"))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(tuples) != 0 {
		t.Fatalf("Expected 0 rows after rollback, got %d", len(tuples))
	}
}

func TestMemorySynthesizesAuditColumns(t *testing.T) {
	store := NewMemory()
	store.Actor = "tester@local"
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return t0 }
	ctx := context.Background()

	h, err := store.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer store.Release(h)

	audit := []string{"created_at", "created_by", "updated_at", "updated_by"}
	_, gen, err := store.Write(ctx, h, "tenants", nil, Payload{}.Set("name", "acme"), audit)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if got, _ := gen.Get("created_at"); got != t0 {
		t.Errorf("Expected created_at %v, got %v", t0, got)
	}
	if got := gen.String("created_by"); got != "tester@local" {
		t.Errorf("Expected created_by 'tester@local', got %q", got)
	}

	// An update refreshes the update stamps but leaves the create stamps.
	t1 := t0.Add(time.Hour)
	store.Now = func() time.Time { return t1 }
	_, gen, err = store.Write(ctx, h, "tenants", query.Eq("name", "acme"), Payload{}.Set("type", "paid"), audit)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if got, _ := gen.Get("created_at"); got != t0 {
		t.Errorf("Expected created_at to stay %v, got %v", t0, got)
	}
	if got, _ := gen.Get("updated_at"); got != t1 {
		t.Errorf("Expected updated_at %v, got %v", t1, got)
	}
}

func TestMemoryAllowsDuplicateRows(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	h, err := store.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer store.Release(h)

	for i := 0; i < 2; i++ {
		if _, _, err := store.Write(ctx, h, "tenants", nil, Payload{}.Set("name", "acme"), nil); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	tuples, err := store.Read(ctx, h, "tenants", query.Eq("name", "acme"), query.Columns("name"))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(tuples) != 2 {
		t.Fatalf("Expected 2 duplicate rows, got %d", len(tuples))
	}
}

func TestMemoryReleasedHandleRejected(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	h, err := store.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	store.Release(h)

	if store.Opened(h) {
		t.Error("Expected handle to be closed after Release")
	}
	if _, err := store.Read(ctx, h, "tenants", query.All(), query.Columns("name")); err == nil {
		t.Error("Expected read on released handle to fail")
	}
}
