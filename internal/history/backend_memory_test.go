package history

import (
	"context"
	"fmt"
	"testing"
)

func TestMemoryBackendRetentionCap(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()

	for i := 0; i < 11; i++ {
		rec := Record{"id": fmt.Sprintf("a-%d", i), "timestamp": float64(i)}
		if err := b.Save(ctx, "user-1", KindAnalyses, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	recs, err := b.Load(ctx, "user-1", KindAnalyses, 20)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recs) != 10 {
		t.Fatalf("len = %d, want 10", len(recs))
	}
	// Newest first; the oldest record fell off.
	if recs[0].ID() != "a-10" {
		t.Fatalf("head = %q, want a-10", recs[0].ID())
	}
	if recs[len(recs)-1].ID() != "a-1" {
		t.Fatalf("tail = %q, want a-1", recs[len(recs)-1].ID())
	}
}

func TestMemoryBackendChatCapIsFive(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		rec := Record{"id": fmt.Sprintf("c-%d", i)}
		if err := b.Save(ctx, "user-1", KindChats, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	recs, err := b.Load(ctx, "user-1", KindChats, 20)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recs) != 5 {
		t.Fatalf("len = %d, want 5", len(recs))
	}
}

func TestMemoryBackendReplacesByIDInPlace(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()

	for _, id := range []string{"c-1", "c-2", "c-3"} {
		if err := b.Save(ctx, "user-1", KindChats, Record{"id": id, "title": "old"}); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	if err := b.Save(ctx, "user-1", KindChats, Record{"id": "c-2", "title": "new"}); err != nil {
		t.Fatalf("Save update: %v", err)
	}

	recs, err := b.Load(ctx, "user-1", KindChats, 20)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("len = %d, want 3", len(recs))
	}
	// Position preserved: c-2 stays in the middle.
	if recs[1].ID() != "c-2" {
		t.Fatalf("middle = %q, want c-2", recs[1].ID())
	}
	if recs[1]["title"] != "new" {
		t.Fatalf("title = %v, want new", recs[1]["title"])
	}
}

func TestMemoryBackendClearAll(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()

	for _, kind := range Kinds {
		if err := b.Save(ctx, "user-1", kind, Record{"id": "r-1"}); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	if err := b.Save(ctx, "user-2", KindChats, Record{"id": "r-2"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := b.ClearAll(ctx, "user-1"); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}

	for _, kind := range Kinds {
		recs, err := b.Load(ctx, "user-1", kind, 20)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(recs) != 0 {
			t.Fatalf("kind %q not cleared: %d records", kind, len(recs))
		}
	}

	recs, err := b.Load(ctx, "user-2", KindChats, 20)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("other user affected: %d records", len(recs))
	}
}
