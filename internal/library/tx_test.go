package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTx_Commit(t *testing.T) {
	store := NewStore(setupTestDB(t))

	tx, err := store.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.AddSeries(&Series{SeriesID: "ws_tx", Title: "TX Show", Type: SeriesTypeWebseries}))
	require.NoError(t, tx.AddMovie(&Movie{ContentID: "mo_tx", Title: "TX Movie", Year: 2024, FileRef: "f"}))

	kind, err := tx.LookupKind("ws_tx")
	require.NoError(t, err)
	assert.Equal(t, KindSeries, kind)
	require.NoError(t, tx.Commit())

	got, err := store.GetMovie("mo_tx")
	require.NoError(t, err)
	assert.Equal(t, "TX Movie", got.Title)
}

func TestTx_Rollback(t *testing.T) {
	store := NewStore(setupTestDB(t))

	tx, err := store.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.AddMovie(&Movie{ContentID: "mo_tx", Title: "TX Movie", Year: 2024, FileRef: "f"}))
	require.NoError(t, tx.Rollback())

	_, err = store.GetMovie("mo_tx")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.LookupKind("mo_tx")
	assert.ErrorIs(t, err, ErrNotFound)
}
