package history

import (
	"context"
	"errors"
	"testing"
)

type stubBackend struct {
	records map[Kind][]Record
	saveErr error
	loadErr error
	saved   []Record
	cleared bool
}

func (s *stubBackend) Save(ctx context.Context, userID string, kind Kind, rec Record) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, rec)
	return nil
}

func (s *stubBackend) Load(ctx context.Context, userID string, kind Kind, limit int) ([]Record, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.records[kind], nil
}

func (s *stubBackend) ClearAll(ctx context.Context, userID string) error {
	s.cleared = true
	return nil
}

func TestStoreSaveWritesBothTiers(t *testing.T) {
	primary := &stubBackend{}
	fallback := &stubBackend{}
	store := NewStore(primary, fallback)

	rec := Record{"id": "r-1", "timestamp": float64(1)}
	if err := store.Save(context.Background(), "user-1", KindAnalyses, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if len(primary.saved) != 1 || len(fallback.saved) != 1 {
		t.Fatalf("primary=%d fallback=%d, want 1 each", len(primary.saved), len(fallback.saved))
	}
}

func TestStoreSaveStripsNullsBeforeWrite(t *testing.T) {
	fallback := &stubBackend{}
	store := NewStore(nil, fallback)

	rec := Record{"id": "r-1", "price": nil}
	if err := store.Save(context.Background(), "user-1", KindAnalyses, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, ok := fallback.saved[0]["price"]; ok {
		t.Fatalf("null field survived: %#v", fallback.saved[0])
	}
}

func TestStoreSaveSwallowsPrimaryFailure(t *testing.T) {
	primary := &stubBackend{saveErr: errors.New("cloud down")}
	fallback := &stubBackend{}
	store := NewStore(primary, fallback)

	if err := store.Save(context.Background(), "user-1", KindChats, Record{"id": "c-1"}); err != nil {
		t.Fatalf("Save should not surface primary failure: %v", err)
	}
	if len(fallback.saved) != 1 {
		t.Fatal("fallback write skipped")
	}
}

func TestStoreSaveRejectsUnknownKind(t *testing.T) {
	store := NewStore(nil, &stubBackend{})
	if err := store.Save(context.Background(), "user-1", Kind("bogus"), Record{}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestStoreLoadPrefersNonEmptyPrimary(t *testing.T) {
	primary := &stubBackend{records: map[Kind][]Record{
		KindAnalyses: {{"id": "cloud"}},
	}}
	fallback := &stubBackend{records: map[Kind][]Record{
		KindAnalyses: {{"id": "local"}},
	}}
	store := NewStore(primary, fallback)

	recs, err := store.Load(context.Background(), "user-1", KindAnalyses, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recs) != 1 || recs[0].ID() != "cloud" {
		t.Fatalf("got %#v, want the primary record", recs)
	}
}

func TestStoreLoadFallsBackWhenPrimaryEmpty(t *testing.T) {
	primary := &stubBackend{}
	fallback := &stubBackend{records: map[Kind][]Record{
		KindChats: {{"id": "local"}},
	}}
	store := NewStore(primary, fallback)

	recs, err := store.Load(context.Background(), "user-1", KindChats, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recs) != 1 || recs[0].ID() != "local" {
		t.Fatalf("got %#v, want the fallback record", recs)
	}
}

func TestStoreLoadFallsBackWhenPrimaryFails(t *testing.T) {
	primary := &stubBackend{loadErr: errors.New("cloud down")}
	fallback := &stubBackend{records: map[Kind][]Record{
		KindGenerations: {{"id": "local"}},
	}}
	store := NewStore(primary, fallback)

	recs, err := store.Load(context.Background(), "user-1", KindGenerations, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recs) != 1 || recs[0].ID() != "local" {
		t.Fatalf("got %#v, want the fallback record", recs)
	}
}

func TestStoreClearAllClearsBothTiers(t *testing.T) {
	primary := &stubBackend{}
	fallback := &stubBackend{}
	store := NewStore(primary, fallback)

	if err := store.ClearAll(context.Background(), "user-1"); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if !primary.cleared || !fallback.cleared {
		t.Fatalf("primary=%v fallback=%v, want both cleared", primary.cleared, fallback.cleared)
	}
}
