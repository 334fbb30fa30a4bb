package contentid

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Inception", "inception"},
		{"The Dark Knight", "the_dark_knight"},
		{"Léon: The Professional", "leon_the_profes"},
		{"  Spider-Man  ", "spider_man"},
		{"Amélie", "amelie"},
		{"!!!", "untitled"},
		{"", "untitled"},
		{"abcdefghijklmn opq", "abcdefghijklmn"},
		{"2001: A Space Odyssey", "2001_a_space_od"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got := Slug(tt.title)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), MaxSlugLen)
			assert.Regexp(t, `^[a-z0-9_]+$`, got)
		})
	}
}

func TestEncoder_ContentID(t *testing.T) {
	clock := func() time.Time { return time.UnixMilli(1700000012345) }
	enc := NewEncoder(clock)

	id, err := enc.ContentID(Movie, "Inception", 2010)
	require.NoError(t, err)
	assert.Equal(t, "mo_inception_2010_12345", id)

	id, err = enc.ContentID(Webseries, "Dark", 2017)
	require.NoError(t, err)
	assert.Equal(t, "ws_dark_2017_12345", id)

	id, err = enc.ContentID(Anime, "Frieren: Beyond Journey's End", 2023)
	require.NoError(t, err)
	assert.Equal(t, "an_frieren_beyond_2023_12345", id)
}

func TestEncoder_ContentID_PadsSuffix(t *testing.T) {
	enc := NewEncoder(func() time.Time { return time.UnixMilli(1700000000042) })

	id, err := enc.ContentID(Movie, "Up", 2009)
	require.NoError(t, err)
	assert.Equal(t, "mo_up_2009_00042", id)
}

func TestEncoder_ContentID_Invalid(t *testing.T) {
	enc := NewEncoder(nil)

	_, err := enc.ContentID("documentary", "X", 2000)
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = enc.ContentID(Movie, "X", 0)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestEncodeContentID_Format(t *testing.T) {
	id, err := EncodeContentID(Movie, "Some Very Long Movie Title Indeed", 1999)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^mo_[a-z0-9_]{1,15}_1999_\d{5}$`), id)
}

func TestEncodeEpisodeID(t *testing.T) {
	assert.Equal(t, "demo123_s01e02", EncodeEpisodeID("demo123", 1, 2))
	assert.Equal(t, "ws_dark_2017_12345_s03e10", EncodeEpisodeID("ws_dark_2017_12345", 3, 10))
	assert.Equal(t, "x_s100e01", EncodeEpisodeID("x", 100, 1))
}

func TestParseEpisodeID_RoundTrip(t *testing.T) {
	seriesIDs := []string{"demo123", "ws_dark_2017_12345", "an_one_piece_1999_00001"}
	for _, seriesID := range seriesIDs {
		for s := 1; s <= 99; s++ {
			for e := 1; e <= 99; e++ {
				ref, err := ParseEpisodeID(EncodeEpisodeID(seriesID, s, e))
				require.NoError(t, err)
				require.Equal(t, EpisodeRef{SeriesID: seriesID, Season: s, Episode: e}, ref)
			}
		}
	}
}

func TestParseEpisodeID_MarkersInsideSeriesID(t *testing.T) {
	// A series slug that itself looks like an episode marker still parses on the final suffix.
	seriesID := "ws_s01e01_show_2020_12345"
	ref, err := ParseEpisodeID(EncodeEpisodeID(seriesID, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, EpisodeRef{SeriesID: seriesID, Season: 2, Episode: 3}, ref)
}

func TestParseEpisodeID_Malformed(t *testing.T) {
	for _, id := range []string{
		"mo_inception_2010_12345",
		"demo123_s1e02",
		"demo123_s01e",
		"_s01e02",
		"demo123_s00e01",
		"demo123_s01e02x",
		"",
	} {
		t.Run(fmt.Sprintf("%q", id), func(t *testing.T) {
			_, err := ParseEpisodeID(id)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestHasEpisodeMarkers(t *testing.T) {
	assert.True(t, HasEpisodeMarkers("demo123_s01e02"))
	assert.True(t, HasEpisodeMarkers("mo_glee_s1e1_2010_12345"), "slugs can carry the pattern")
	assert.False(t, HasEpisodeMarkers("mo_inception_2010_12345"))
	assert.False(t, HasEpisodeMarkers("ws_season_2020_12345"))
}

func TestEpisodeRef_ID(t *testing.T) {
	assert.Equal(t, "demo123_s01e02", EpisodeRef{SeriesID: "demo123", Season: 1, Episode: 2}.ID())
}
