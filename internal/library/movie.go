package library

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const movieColumns = `content_id, title, year, file_ref, upload_status, upload_error, stored_chat_id, stored_message_id, added_at, updated_at`

func addMovie(q querier, now time.Time, m *Movie) error {
	if m.UploadStatus == "" {
		m.UploadStatus = UploadPending
	}
	if err := indexID(q, m.ContentID, KindMovie); err != nil {
		return err
	}
	_, err := q.Exec(`
		INSERT INTO movies (content_id, title, year, file_ref, upload_status, added_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ContentID, m.Title, m.Year, m.FileRef, m.UploadStatus, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert movie: %w", mapSQLiteError(err))
	}
	m.AddedAt = now
	m.UpdatedAt = now
	return nil
}

// AddMovie registers a movie and claims its id in the shared namespace.
// Sets AddedAt and UpdatedAt on the struct. Returns ErrDuplicate if the id is
// already registered under any kind.
func (s *Store) AddMovie(m *Movie) error {
	return s.withTx(func(t *Tx) error { return t.AddMovie(m) })
}

// AddMovie registers a movie within a transaction.
func (t *Tx) AddMovie(m *Movie) error { return addMovie(t.tx, t.now(), m) }

func scanMovie(row scanner) (*Movie, error) {
	m := &Movie{}
	var uploadErr sql.NullString
	var chatID, msgID sql.NullInt64
	if err := row.Scan(&m.ContentID, &m.Title, &m.Year, &m.FileRef, &m.UploadStatus, &uploadErr,
		&chatID, &msgID, &m.AddedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.UploadError = nullString(uploadErr)
	m.Stored = messageRef(chatID, msgID)
	return m, nil
}

func getMovie(q querier, contentID string) (*Movie, error) {
	m, err := scanMovie(q.QueryRow(`SELECT `+movieColumns+` FROM movies WHERE content_id = ?`, contentID))
	if err != nil {
		return nil, fmt.Errorf("get movie %q: %w", contentID, mapSQLiteError(err))
	}
	return m, nil
}

// GetMovie retrieves a movie by its content id.
// Returns ErrNotFound if the movie does not exist.
func (s *Store) GetMovie(contentID string) (*Movie, error) { return getMovie(s.db, contentID) }

// GetMovie retrieves a movie within a transaction.
func (t *Tx) GetMovie(contentID string) (*Movie, error) { return getMovie(t.tx, contentID) }

// ListMovies returns movies matching the filter with pagination.
// Returns (results, totalCount, error).
func (s *Store) ListMovies(f MovieFilter) ([]*Movie, int, error) {
	var conditions []string
	var args []any

	if f.Status != nil {
		conditions = append(conditions, "upload_status = ?")
		args = append(args, *f.Status)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM movies "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movies: %w", err)
	}

	query := "SELECT " + movieColumns + " FROM movies " + whereClause + " ORDER BY added_at, content_id"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list movies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan movie: %w", err)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate movies: %w", err)
	}

	return results, total, nil
}

// DeleteMovie removes a movie and releases its id.
// This operation is idempotent - no error is returned if the movie does not exist.
func (s *Store) DeleteMovie(contentID string) error {
	if _, err := s.db.Exec("DELETE FROM movies WHERE content_id = ?", contentID); err != nil {
		return fmt.Errorf("delete movie %q: %w", contentID, mapSQLiteError(err))
	}
	return nil
}
