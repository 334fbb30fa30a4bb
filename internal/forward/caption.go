package forward

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/vmunix/reelvault/internal/library"
)

// MaxCaptionLen is the provider limit on media captions, in characters.
const MaxCaptionLen = 1024

// Truncate cuts s to at most limit runes.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}

// MovieCaption builds the storage caption for a movie.
func MovieCaption(m *library.Movie) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎬 %s", m.Title)
	if m.Year > 0 {
		fmt.Fprintf(&b, " (%d)", m.Year)
	}
	fmt.Fprintf(&b, "\nID: %s", m.ContentID)
	return b.String()
}

// EpisodeCaption builds the storage caption for an episode. series may be nil
// when the parent record is unavailable.
func EpisodeCaption(series *library.Series, e *library.Episode) string {
	var b strings.Builder
	title := e.SeriesID
	if series != nil {
		title = series.Title
	}
	fmt.Fprintf(&b, "📺 %s S%02dE%02d", title, e.SeasonNumber, e.EpisodeNumber)
	if e.Title != "" {
		fmt.Fprintf(&b, " - %s", e.Title)
	}
	fmt.Fprintf(&b, "\nID: %s", e.ContentID)
	return b.String()
}
