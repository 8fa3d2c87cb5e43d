package history

import (
	"context"
	"sync"
)

// MemoryBackend keeps bounded per-user collections in memory, most recent
// first. It is the default fallback tier and is safe for concurrent use.
type MemoryBackend struct {
	mu    sync.RWMutex
	users map[string]map[Kind][]Record
}

// NewMemoryBackend constructs an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{users: make(map[string]map[Kind][]Record)}
}

// Save stores the record. Records carrying an id that already exists are
// replaced in place; new records are prepended and the collection is trimmed
// to the kind's retention cap.
func (b *MemoryBackend) Save(ctx context.Context, userID string, kind Kind, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	kinds, ok := b.users[userID]
	if !ok {
		kinds = make(map[Kind][]Record)
		b.users[userID] = kinds
	}
	recs := kinds[kind]

	if id := rec.ID(); id != "" {
		for i := range recs {
			if recs[i].ID() == id {
				recs[i] = rec
				kinds[kind] = recs
				return nil
			}
		}
	}

	recs = append([]Record{rec}, recs...)
	if cap := RetentionCap(kind); len(recs) > cap {
		recs = recs[:cap]
	}
	kinds[kind] = recs
	return nil
}

// Load returns the stored collection, already most-recent-first.
func (b *MemoryBackend) Load(ctx context.Context, userID string, kind Kind, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	recs := b.users[userID][kind]
	out := make([]Record, len(recs))
	copy(out, recs)
	return out, nil
}

// ClearAll removes every collection for the user.
func (b *MemoryBackend) ClearAll(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.users, userID)
	return nil
}

var _ Backend = (*MemoryBackend)(nil)
