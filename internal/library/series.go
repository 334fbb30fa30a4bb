package library

import (
	"fmt"
	"time"
)

const seriesColumns = `series_id, title, type, year, added_at, updated_at`

func addSeries(q querier, now time.Time, s *Series) error {
	if !s.Type.Valid() {
		return fmt.Errorf("insert series: type %q: %w", s.Type, ErrConstraint)
	}
	if err := indexID(q, s.SeriesID, KindSeries); err != nil {
		return err
	}
	_, err := q.Exec(`
		INSERT INTO series (series_id, title, type, year, added_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.SeriesID, s.Title, s.Type, s.Year, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert series: %w", mapSQLiteError(err))
	}
	s.AddedAt = now
	s.UpdatedAt = now
	return nil
}

// AddSeries registers a series and claims its id in the shared namespace.
func (s *Store) AddSeries(series *Series) error {
	return s.withTx(func(t *Tx) error { return t.AddSeries(series) })
}

// AddSeries registers a series within a transaction.
func (t *Tx) AddSeries(series *Series) error { return addSeries(t.tx, t.now(), series) }

func scanSeries(row scanner) (*Series, error) {
	s := &Series{}
	if err := row.Scan(&s.SeriesID, &s.Title, &s.Type, &s.Year, &s.AddedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

// GetSeries retrieves a series by exact id.
// Returns ErrNotFound if the series does not exist.
func (s *Store) GetSeries(seriesID string) (*Series, error) {
	series, err := scanSeries(s.db.QueryRow(`SELECT `+seriesColumns+` FROM series WHERE series_id = ?`, seriesID))
	if err != nil {
		return nil, fmt.Errorf("get series %q: %w", seriesID, mapSQLiteError(err))
	}
	return series, nil
}

// FindSeriesFold retrieves a series whose id matches seriesID ignoring ASCII case.
// When several ids fold to the same value the earliest registered wins.
func (s *Store) FindSeriesFold(seriesID string) (*Series, error) {
	series, err := scanSeries(s.db.QueryRow(`
		SELECT `+seriesColumns+` FROM series
		WHERE series_id = ? COLLATE NOCASE
		ORDER BY added_at, series_id LIMIT 1`, seriesID))
	if err != nil {
		return nil, fmt.Errorf("find series %q: %w", seriesID, mapSQLiteError(err))
	}
	return series, nil
}

// ListSeries returns every series ordered by registration.
func (s *Store) ListSeries() ([]*Series, error) {
	rows, err := s.db.Query(`SELECT ` + seriesColumns + ` FROM series ORDER BY added_at, series_id`)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Series
	for rows.Next() {
		series, err := scanSeries(rows)
		if err != nil {
			return nil, fmt.Errorf("scan series: %w", err)
		}
		results = append(results, series)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate series: %w", err)
	}
	return results, nil
}

// DeleteSeries removes a series with its seasons and episodes.
// This operation is idempotent.
func (s *Store) DeleteSeries(seriesID string) error {
	if _, err := s.db.Exec("DELETE FROM series WHERE series_id = ?", seriesID); err != nil {
		return fmt.Errorf("delete series %q: %w", seriesID, mapSQLiteError(err))
	}
	return nil
}

// AddSeason adds a season to an existing series.
// Returns ErrDuplicate if the season number is taken and ErrConstraint if the
// series does not exist.
func (s *Store) AddSeason(season *Season) error {
	now := s.now()
	_, err := s.db.Exec(`
		INSERT INTO seasons (series_id, season_number, title, added_at)
		VALUES (?, ?, ?, ?)`,
		season.SeriesID, season.SeasonNumber, season.Title, now,
	)
	if err != nil {
		return fmt.Errorf("insert season %s/%d: %w", season.SeriesID, season.SeasonNumber, mapSQLiteError(err))
	}
	season.AddedAt = now
	return nil
}

// GetSeason retrieves one season of a series.
func (s *Store) GetSeason(seriesID string, number int) (*Season, error) {
	season := &Season{}
	err := s.db.QueryRow(`
		SELECT series_id, season_number, title, added_at
		FROM seasons WHERE series_id = ? AND season_number = ?`, seriesID, number,
	).Scan(&season.SeriesID, &season.SeasonNumber, &season.Title, &season.AddedAt)
	if err != nil {
		return nil, fmt.Errorf("get season %s/%d: %w", seriesID, number, mapSQLiteError(err))
	}
	return season, nil
}

// ListSeasons returns the seasons of a series ordered by season number ascending.
func (s *Store) ListSeasons(seriesID string) ([]*Season, error) {
	rows, err := s.db.Query(`
		SELECT series_id, season_number, title, added_at
		FROM seasons WHERE series_id = ? ORDER BY season_number`, seriesID)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Season
	for rows.Next() {
		season := &Season{}
		if err := rows.Scan(&season.SeriesID, &season.SeasonNumber, &season.Title, &season.AddedAt); err != nil {
			return nil, fmt.Errorf("scan season: %w", err)
		}
		results = append(results, season)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seasons: %w", err)
	}
	return results, nil
}
