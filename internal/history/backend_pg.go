package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// PGBackend implements the primary tier over Postgres, storing each record as
// a jsonb document under the user's namespace.
type PGBackend struct {
	DB *sql.DB
}

// Save upserts the record. When the record carries an id it is the document
// key (overwrite semantics); otherwise a key is assigned (append semantics).
func (b *PGBackend) Save(ctx context.Context, userID string, kind Kind, rec Record) error {
	id := rec.ID()
	if id == "" {
		id = uuid.NewString()
	}
	doc, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	const query = `
INSERT INTO history_documents (user_id, kind, id, ts, document)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id, kind, id)
DO UPDATE SET ts = EXCLUDED.ts, document = EXCLUDED.document`
	_, err = b.DB.ExecContext(ctx, query, userID, string(kind), id, rec.Timestamp(), doc)
	return err
}

// Load returns up to limit records for the kind, newest first.
func (b *PGBackend) Load(ctx context.Context, userID string, kind Kind, limit int) ([]Record, error) {
	const query = `
SELECT document
FROM history_documents
WHERE user_id = $1 AND kind = $2
ORDER BY ts DESC
LIMIT $3`
	rows, err := b.DB.QueryContext(ctx, query, userID, string(kind), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var rec Record
		if err := json.Unmarshal(doc, &rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ClearAll deletes the user's documents for every kind. Kinds are deleted
// concurrently; a failure in one kind does not abort the others.
func (b *PGBackend) ClearAll(ctx context.Context, userID string) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, kind := range Kinds {
		wg.Add(1)
		go func(kind Kind) {
			defer wg.Done()
			_, err := b.DB.ExecContext(ctx,
				`DELETE FROM history_documents WHERE user_id = $1 AND kind = $2`,
				userID, string(kind))
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(kind)
	}
	wg.Wait()
	return errors.Join(errs...)
}

var _ Backend = (*PGBackend)(nil)
