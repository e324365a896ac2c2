package oplog

import (
	"context"
	"log/slog"
	"testing"

	"okr/internal/tablestore"
)

func TestRecordAndList(t *testing.T) {
	mem := tablestore.NewMemory(nil)
	svc := NewService(mem, "oplogs", slog.Default())
	ctx := context.Background()

	svc.Record(ctx, "emp1", "Eve", "create", "objective", "OBJ1", nil, map[string]string{"title": "Ship v2"}, "10.0.0.1", "curl")
	svc.Record(ctx, "boss", "Blake", "approved", "objective", "OBJ1", nil, nil, "", "")

	entries, err := svc.List(ctx, Query{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// Newest first.
	if entries[0].OperatorID != "boss" || entries[1].OperatorID != "emp1" {
		t.Fatalf("unexpected ordering: %+v", entries)
	}
	if entries[1].NewValue != `{"title":"Ship v2"}` {
		t.Fatalf("snapshot not serialized: %q", entries[1].NewValue)
	}
	if entries[1].LogID == "" || entries[1].LoggedAt == "" {
		t.Fatalf("missing stamps: %+v", entries[1])
	}

	filtered, err := svc.List(ctx, Query{OperatorID: "boss"})
	if err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Operation != "approved" {
		t.Fatalf("unexpected filtered entries: %+v", filtered)
	}
}

func TestUnconfiguredTableDisablesAuditing(t *testing.T) {
	mem := tablestore.NewMemory(nil)
	svc := NewService(mem, "", slog.Default())

	svc.Record(context.Background(), "emp1", "Eve", "create", "objective", "OBJ1", nil, nil, "", "")

	records, err := mem.Find(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no writes, got %d", len(records))
	}
}
