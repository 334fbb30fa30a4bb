package library

import (
	"fmt"
)

func indexID(q querier, id string, kind Kind) error {
	if _, err := q.Exec(`INSERT INTO content_index (id, kind) VALUES (?, ?)`, id, kind); err != nil {
		return fmt.Errorf("index %s %q: %w", kind, id, mapSQLiteError(err))
	}
	return nil
}

func lookupKind(q querier, id string) (Kind, error) {
	var k Kind
	if err := q.QueryRow(`SELECT kind FROM content_index WHERE id = ?`, id).Scan(&k); err != nil {
		return "", fmt.Errorf("lookup kind %q: %w", id, mapSQLiteError(err))
	}
	return k, nil
}

// LookupKind returns the kind tag stored for id when it was registered.
// Returns ErrNotFound if id was never registered.
func (s *Store) LookupKind(id string) (Kind, error) { return lookupKind(s.db, id) }

// LookupKind returns the kind tag for id within a transaction.
func (t *Tx) LookupKind(id string) (Kind, error) { return lookupKind(t.tx, id) }
