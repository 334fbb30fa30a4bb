// Package contentid generates and parses the identifiers used to address
// movies, series and episodes, and the selection tokens carried in bot
// callbacks. All functions are pure.
package contentid

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrMalformed is returned when an identifier or token does not parse.
var ErrMalformed = errors.New("malformed identifier")

// Category selects the two-letter prefix of a content id.
type Category string

const (
	Movie     Category = "movie"
	Webseries Category = "webseries"
	Anime     Category = "anime"
)

var prefixes = map[Category]string{
	Movie:     "mo",
	Webseries: "ws",
	Anime:     "an",
}

// Prefix returns the two-letter tag for c, or "" if c is unknown.
func (c Category) Prefix() string { return prefixes[c] }

// MaxSlugLen is the longest slug embedded in a content id.
const MaxSlugLen = 15

// suffixModulus keeps the last five decimal digits of the millisecond clock.
const suffixModulus = 100000

// Encoder generates content ids from a clock.
type Encoder struct {
	now func() time.Time
}

// NewEncoder creates an encoder. A nil clock uses time.Now.
func NewEncoder(now func() time.Time) *Encoder {
	if now == nil {
		now = time.Now
	}
	return &Encoder{now: now}
}

// ContentID returns {prefix}_{slug}_{year}_{suffix} where suffix is the last
// five digits of the current unix millisecond timestamp.
func (e *Encoder) ContentID(c Category, title string, year int) (string, error) {
	prefix := c.Prefix()
	if prefix == "" {
		return "", fmt.Errorf("content id: unknown category %q: %w", c, ErrMalformed)
	}
	if year < 1 || year > 9999 {
		return "", fmt.Errorf("content id: year %d out of range: %w", year, ErrMalformed)
	}
	suffix := e.now().UnixMilli() % suffixModulus
	return fmt.Sprintf("%s_%s_%d_%05d", prefix, Slug(title), year, suffix), nil
}

var defaultEncoder = NewEncoder(nil)

// EncodeContentID generates a content id using the wall clock.
func EncodeContentID(c Category, title string, year int) (string, error) {
	return defaultEncoder.ContentID(c, title, year)
}

// Slug lowercases title, folds accents, maps every rune outside [a-z0-9] to an
// underscore, collapses underscore runs and truncates to MaxSlugLen.
func Slug(title string) string {
	s := strings.ToLower(removeAccents(title))

	var b strings.Builder
	lastUnderscore := true // suppresses a leading underscore
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}

	slug := b.String()
	if len(slug) > MaxSlugLen {
		slug = slug[:MaxSlugLen]
	}
	slug = strings.TrimRight(slug, "_")
	if slug == "" {
		return "untitled"
	}
	return slug
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// EpisodeRef is the (series, season, episode) triple encoded in an episode id.
type EpisodeRef struct {
	SeriesID string
	Season   int
	Episode  int
}

// ID returns the episode id for r.
func (r EpisodeRef) ID() string { return EncodeEpisodeID(r.SeriesID, r.Season, r.Episode) }

// EncodeEpisodeID returns {seriesID}_s{season:02d}e{episode:02d}.
func EncodeEpisodeID(seriesID string, season, episode int) string {
	return fmt.Sprintf("%s_s%02de%02d", seriesID, season, episode)
}

// episodeSuffix anchors on the final _sNNeNN so series ids that contain
// "_s" or "_e" elsewhere still parse.
var episodeSuffix = regexp.MustCompile(`^(.+)_s(\d{2,})e(\d{2,})$`)

// episodeMarkers matches the marker pattern anywhere in an id.
var episodeMarkers = regexp.MustCompile(`_s\d+e\d+`)

// ParseEpisodeID recovers the triple from an episode id. Ids without a
// well-formed trailing marker fail with ErrMalformed.
func ParseEpisodeID(id string) (EpisodeRef, error) {
	m := episodeSuffix.FindStringSubmatch(id)
	if m == nil {
		return EpisodeRef{}, fmt.Errorf("episode id %q: %w", id, ErrMalformed)
	}
	season, err := strconv.Atoi(m[2])
	if err != nil {
		return EpisodeRef{}, fmt.Errorf("episode id %q: season: %w", id, ErrMalformed)
	}
	episode, err := strconv.Atoi(m[3])
	if err != nil {
		return EpisodeRef{}, fmt.Errorf("episode id %q: episode: %w", id, ErrMalformed)
	}
	if season < 1 || episode < 1 {
		return EpisodeRef{}, fmt.Errorf("episode id %q: zero season or episode: %w", id, ErrMalformed)
	}
	return EpisodeRef{SeriesID: m[1], Season: season, Episode: episode}, nil
}

// HasEpisodeMarkers reports whether id contains the _s<digits>e<digits>
// marker. It is a heuristic for ids whose kind was never recorded; a movie
// slug may contain the same pattern.
func HasEpisodeMarkers(id string) bool {
	return episodeMarkers.MatchString(id)
}
