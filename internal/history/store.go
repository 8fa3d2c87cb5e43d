package history

import (
	"context"
	"fmt"

	"dealscope-backend/internal/shared/telemetry"
)

const defaultLoadLimit = 20

// Backend is the capability interface both storage tiers satisfy.
type Backend interface {
	Save(ctx context.Context, userID string, kind Kind, rec Record) error
	Load(ctx context.Context, userID string, kind Kind, limit int) ([]Record, error)
	ClearAll(ctx context.Context, userID string) error
}

// Store coordinates a primary (cloud) backend and a bounded local fallback.
// Writes go to both tiers; the primary is authoritative on read whenever it
// returns data. Primary failures are logged and swallowed so callers never
// block on cloud durability.
type Store struct {
	Primary  Backend
	Fallback Backend
}

// NewStore builds a two-tier store. Primary may be nil (fallback-only mode).
func NewStore(primary, fallback Backend) *Store {
	return &Store{Primary: primary, Fallback: fallback}
}

// Save persists the record to the primary store (when configured) and mirrors
// it into the fallback. The record is null-stripped before either write.
func (s *Store) Save(ctx context.Context, userID string, kind Kind, rec Record) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown history kind %q", kind)
	}
	stripped, _ := StripNulls(map[string]any(rec)).(map[string]any)
	rec = Record(stripped)

	if s.Primary != nil {
		if err := s.Primary.Save(ctx, userID, kind, rec); err != nil {
			telemetry.Warn("history.primary_save_failed", map[string]any{
				"user_id": userID,
				"kind":    string(kind),
				"error":   err.Error(),
			})
		}
	}

	if err := s.Fallback.Save(ctx, userID, kind, rec); err != nil {
		telemetry.Warn("history.fallback_save_failed", map[string]any{
			"user_id": userID,
			"kind":    string(kind),
			"error":   err.Error(),
		})
	}
	return nil
}

// Load returns up to limit records, most recent first. A non-empty primary
// result is authoritative; an empty or failing primary falls through to the
// fallback collection as stored.
func (s *Store) Load(ctx context.Context, userID string, kind Kind, limit int) ([]Record, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown history kind %q", kind)
	}
	if limit <= 0 {
		limit = defaultLoadLimit
	}

	if s.Primary != nil {
		recs, err := s.Primary.Load(ctx, userID, kind, limit)
		if err != nil {
			telemetry.Warn("history.primary_load_failed", map[string]any{
				"user_id": userID,
				"kind":    string(kind),
				"error":   err.Error(),
			})
		} else if len(recs) > 0 {
			return recs, nil
		}
	}

	return s.Fallback.Load(ctx, userID, kind, limit)
}

// ClearAll wipes the user's history. The fallback is cleared unconditionally;
// primary failures are logged and do not abort the clear.
func (s *Store) ClearAll(ctx context.Context, userID string) error {
	if s.Primary != nil {
		if err := s.Primary.ClearAll(ctx, userID); err != nil {
			telemetry.Warn("history.primary_clear_failed", map[string]any{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
	}
	return s.Fallback.ClearAll(ctx, userID)
}
