package library

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const episodeColumns = `content_id, series_id, season_number, episode_number, title, file_ref, upload_status, upload_error, stored_chat_id, stored_message_id, share_link, added_at, updated_at`

func addEpisode(q querier, now time.Time, e *Episode) error {
	if e.UploadStatus == "" {
		e.UploadStatus = UploadPending
	}
	if err := indexID(q, e.ContentID, KindEpisode); err != nil {
		return err
	}
	_, err := q.Exec(`
		INSERT INTO episodes (content_id, series_id, season_number, episode_number, title, file_ref, upload_status, added_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ContentID, e.SeriesID, e.SeasonNumber, e.EpisodeNumber, e.Title, e.FileRef, e.UploadStatus, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert episode S%02dE%02d: %w", e.SeasonNumber, e.EpisodeNumber, mapSQLiteError(err))
	}
	e.AddedAt = now
	e.UpdatedAt = now
	return nil
}

// AddEpisode registers an episode under an existing season and claims its
// content id in the shared namespace.
func (s *Store) AddEpisode(e *Episode) error {
	return s.withTx(func(t *Tx) error { return t.AddEpisode(e) })
}

// AddEpisode registers an episode within a transaction.
func (t *Tx) AddEpisode(e *Episode) error { return addEpisode(t.tx, t.now(), e) }

func scanEpisode(row scanner) (*Episode, error) {
	e := &Episode{}
	var uploadErr, link sql.NullString
	var chatID, msgID sql.NullInt64
	if err := row.Scan(&e.ContentID, &e.SeriesID, &e.SeasonNumber, &e.EpisodeNumber, &e.Title, &e.FileRef,
		&e.UploadStatus, &uploadErr, &chatID, &msgID, &link, &e.AddedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.UploadError = nullString(uploadErr)
	e.ShareLink = nullString(link)
	e.Stored = messageRef(chatID, msgID)
	return e, nil
}

func getEpisode(q querier, contentID string) (*Episode, error) {
	e, err := scanEpisode(q.QueryRow(`SELECT `+episodeColumns+` FROM episodes WHERE content_id = ?`, contentID))
	if err != nil {
		return nil, fmt.Errorf("get episode %q: %w", contentID, mapSQLiteError(err))
	}
	return e, nil
}

// GetEpisode retrieves an episode by its content id.
// Returns ErrNotFound if the episode does not exist.
func (s *Store) GetEpisode(contentID string) (*Episode, error) { return getEpisode(s.db, contentID) }

// GetEpisode retrieves an episode within a transaction.
func (t *Tx) GetEpisode(contentID string) (*Episode, error) { return getEpisode(t.tx, contentID) }

// ListEpisodes returns episodes matching the filter ordered by season then
// episode number ascending. Returns (results, totalCount, error).
func (s *Store) ListEpisodes(f EpisodeFilter) ([]*Episode, int, error) {
	var conditions []string
	var args []any

	if f.SeriesID != nil {
		conditions = append(conditions, "series_id = ?")
		args = append(args, *f.SeriesID)
	}
	if f.Season != nil {
		conditions = append(conditions, "season_number = ?")
		args = append(args, *f.Season)
	}
	if f.Status != nil {
		conditions = append(conditions, "upload_status = ?")
		args = append(args, *f.Status)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM episodes "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count episodes: %w", err)
	}

	query := "SELECT " + episodeColumns + " FROM episodes " + whereClause + " ORDER BY season_number, episode_number"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list episodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Episode
	for rows.Next() {
		e, err := scanEpisode(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan episode: %w", err)
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate episodes: %w", err)
	}

	return results, total, nil
}

// DeleteEpisode removes an episode and releases its content id.
// This operation is idempotent - no error is returned if the episode does not exist.
func (s *Store) DeleteEpisode(contentID string) error {
	if _, err := s.db.Exec("DELETE FROM episodes WHERE content_id = ?", contentID); err != nil {
		return fmt.Errorf("delete episode %q: %w", contentID, mapSQLiteError(err))
	}
	return nil
}
