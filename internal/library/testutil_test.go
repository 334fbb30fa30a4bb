package library

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vmunix/reelvault/internal/migrations"
	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	// Every pooled connection would otherwise get its own empty memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(migrations.InitialSQL)
	require.NoError(t, err)
	return db
}

func addTestSeries(t *testing.T, store *Store, seriesID string, seasons map[int][]int) {
	t.Helper()
	require.NoError(t, store.AddSeries(&Series{SeriesID: seriesID, Title: "Demo Show", Type: SeriesTypeWebseries, Year: 2024}))
	for season, episodes := range seasons {
		require.NoError(t, store.AddSeason(&Season{SeriesID: seriesID, SeasonNumber: season}))
		for _, ep := range episodes {
			require.NoError(t, store.AddEpisode(&Episode{
				ContentID:     episodeID(seriesID, season, ep),
				SeriesID:      seriesID,
				SeasonNumber:  season,
				EpisodeNumber: ep,
				FileRef:       "file-" + episodeID(seriesID, season, ep),
			}))
		}
	}
}

func episodeID(seriesID string, season, episode int) string {
	return fmt.Sprintf("%s_s%02de%02d", seriesID, season, episode)
}
