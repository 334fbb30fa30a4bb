package library

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// uploadTables maps forwardable kinds to their tables.
var uploadTables = map[Kind]string{
	KindMovie:   "movies",
	KindEpisode: "episodes",
}

// Upload is the upload-state view of a movie or episode.
type Upload struct {
	Kind      Kind
	ContentID string
	Status    UploadStatus
	Error     *string
	AddedAt   time.Time
	UpdatedAt time.Time
}

// UploadUpdate carries the fields written alongside a status transition.
type UploadUpdate struct {
	Status    UploadStatus
	Error     string      // recorded when Status is failed or cancelled
	Stored    *MessageRef // recorded when Status is completed
	ShareLink string      // episodes only
}

// TransitionUpload moves the upload status of a movie or episode, validating
// the transition against the current stored status.
//
// Completing clears any previous error and records the stored message.
// Returns ErrNotFound if the artifact does not exist and ErrInvalidTransition
// if the move is not allowed from its current status.
func (s *Store) TransitionUpload(kind Kind, contentID string, u UploadUpdate) error {
	table, ok := uploadTables[kind]
	if !ok {
		return fmt.Errorf("transition %s %q: kind is not forwardable: %w", kind, contentID, ErrConstraint)
	}

	return s.withTx(func(t *Tx) error {
		var from UploadStatus
		err := t.tx.QueryRow("SELECT upload_status FROM "+table+" WHERE content_id = ?", contentID).Scan(&from)
		if err != nil {
			return fmt.Errorf("transition %s %q: %w", kind, contentID, mapSQLiteError(err))
		}
		if !from.CanTransitionTo(u.Status) {
			return fmt.Errorf("%w: %s %q %s -> %s", ErrInvalidTransition, kind, contentID, from, u.Status)
		}

		sets := []string{"upload_status = ?", "updated_at = ?"}
		args := []any{u.Status, t.now()}

		switch u.Status {
		case UploadCompleted:
			if u.Stored == nil {
				return fmt.Errorf("transition %s %q: completed without stored message: %w", kind, contentID, ErrConstraint)
			}
			sets = append(sets, "upload_error = NULL", "stored_chat_id = ?", "stored_message_id = ?")
			args = append(args, u.Stored.ChatID, u.Stored.MessageID)
			if kind == KindEpisode && u.ShareLink != "" {
				sets = append(sets, "share_link = ?")
				args = append(args, u.ShareLink)
			}
		case UploadFailed, UploadCancelled:
			sets = append(sets, "upload_error = ?")
			args = append(args, u.Error)
		}

		args = append(args, contentID, from)
		result, err := t.tx.Exec("UPDATE "+table+" SET "+strings.Join(sets, ", ")+" WHERE content_id = ? AND upload_status = ?", args...)
		if err != nil {
			return fmt.Errorf("update %s %q: %w", kind, contentID, mapSQLiteError(err))
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("transition %s %q: %w", kind, contentID, ErrNotFound)
		}
		return nil
	})
}

// GetUpload returns the upload-state view of a movie or episode.
func (s *Store) GetUpload(kind Kind, contentID string) (*Upload, error) {
	table, ok := uploadTables[kind]
	if !ok {
		return nil, fmt.Errorf("get upload %s %q: %w", kind, contentID, ErrNotFound)
	}
	u := &Upload{Kind: kind}
	var uploadErr sql.NullString
	err := s.db.QueryRow("SELECT content_id, upload_status, upload_error, added_at, updated_at FROM "+table+" WHERE content_id = ?", contentID).
		Scan(&u.ContentID, &u.Status, &uploadErr, &u.AddedAt, &u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get upload %s %q: %w", kind, contentID, mapSQLiteError(err))
	}
	u.Error = nullString(uploadErr)
	return u, nil
}

// ListUploads returns movies and episodes matching the filter, oldest first.
func (s *Store) ListUploads(f UploadFilter) ([]*Upload, error) {
	var conditions []string
	var args []any

	if f.Status != nil {
		conditions = append(conditions, "upload_status = ?")
		args = append(args, *f.Status)
	}
	if f.UpdatedBefore != nil {
		conditions = append(conditions, "updated_at < ?")
		args = append(args, f.UpdatedBefore.UTC())
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := "SELECT 'movie', content_id, upload_status, upload_error, added_at, updated_at FROM movies" + whereClause +
		" UNION ALL SELECT 'episode', content_id, upload_status, upload_error, added_at, updated_at FROM episodes" + whereClause +
		" ORDER BY 5, 2"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.Query(query, append(args, args...)...)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Upload
	for rows.Next() {
		u := &Upload{}
		var uploadErr sql.NullString
		if err := rows.Scan(&u.Kind, &u.ContentID, &u.Status, &uploadErr, &u.AddedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		u.Error = nullString(uploadErr)
		results = append(results, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate uploads: %w", err)
	}
	return results, nil
}

// DeleteUpload removes a movie or episode by kind and content id.
func (s *Store) DeleteUpload(kind Kind, contentID string) error {
	switch kind {
	case KindMovie:
		return s.DeleteMovie(contentID)
	case KindEpisode:
		return s.DeleteEpisode(contentID)
	default:
		return fmt.Errorf("delete upload %s %q: %w", kind, contentID, ErrConstraint)
	}
}

// Title is a searchable catalogue entry.
type Title struct {
	ID    string
	Kind  Kind
	Title string
	Year  int
}

// ListTitles returns delivered movies and all series for title search.
func (s *Store) ListTitles() ([]Title, error) {
	rows, err := s.db.Query(`
		SELECT content_id, 'movie', title, year FROM movies WHERE upload_status = 'completed'
		UNION ALL
		SELECT series_id, 'series', title, year FROM series
		ORDER BY 3`)
	if err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []Title
	for rows.Next() {
		var t Title
		if err := rows.Scan(&t.ID, &t.Kind, &t.Title, &t.Year); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		results = append(results, t)
	}
	return results, rows.Err()
}
