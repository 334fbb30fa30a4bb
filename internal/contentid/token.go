package contentid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxTokenLen is the provider limit on callback payloads, in bytes.
const MaxTokenLen = 64

// ErrTokenTooLong is returned when an encoded token exceeds MaxTokenLen.
var ErrTokenTooLong = errors.New("selection token too long")

// TokenKind identifies what a selection token selects.
type TokenKind string

const (
	TokenSeason  TokenKind = "season"
	TokenEpisode TokenKind = "episode"
	TokenOpen    TokenKind = "open"
)

// Token is a decoded selection token.
type Token struct {
	Kind     TokenKind
	SeriesID string // TokenSeason
	Season   int    // TokenSeason
	ID       string // TokenEpisode: episode content id; TokenOpen: any id
}

// String encodes the token.
func (t Token) String() string {
	switch t.Kind {
	case TokenSeason:
		return fmt.Sprintf("season_%s_%d", t.SeriesID, t.Season)
	case TokenEpisode:
		return "episode_" + t.ID
	case TokenOpen:
		return "open_" + t.ID
	default:
		return ""
	}
}

// Encode returns the encoded token, enforcing MaxTokenLen.
func (t Token) Encode() (string, error) {
	s := t.String()
	if s == "" {
		return "", fmt.Errorf("token kind %q: %w", t.Kind, ErrMalformed)
	}
	if len(s) > MaxTokenLen {
		return "", fmt.Errorf("token %q: %w", s, ErrTokenTooLong)
	}
	return s, nil
}

// SeasonToken selects a season of a series.
func SeasonToken(seriesID string, season int) Token {
	return Token{Kind: TokenSeason, SeriesID: seriesID, Season: season}
}

// EpisodeToken selects an episode by content id.
func EpisodeToken(episodeID string) Token {
	return Token{Kind: TokenEpisode, ID: episodeID}
}

// OpenToken re-enters resolution for an id picked from search results.
func OpenToken(id string) Token {
	return Token{Kind: TokenOpen, ID: id}
}

// ParseToken decodes a selection token.
//
// For season tokens the season number is the final underscore-delimited
// segment and everything between the prefix and that segment is the series
// id, so series ids may contain underscores. For episode and open tokens
// everything after the prefix is the id.
func ParseToken(data string) (Token, error) {
	switch {
	case strings.HasPrefix(data, "season_"):
		rest := strings.TrimPrefix(data, "season_")
		i := strings.LastIndexByte(rest, '_')
		if i <= 0 || i == len(rest)-1 {
			return Token{}, fmt.Errorf("season token %q: %w", data, ErrMalformed)
		}
		season, err := strconv.Atoi(rest[i+1:])
		if err != nil || season < 1 {
			return Token{}, fmt.Errorf("season token %q: %w", data, ErrMalformed)
		}
		return SeasonToken(rest[:i], season), nil
	case strings.HasPrefix(data, "episode_"):
		id := strings.TrimPrefix(data, "episode_")
		if id == "" {
			return Token{}, fmt.Errorf("episode token %q: %w", data, ErrMalformed)
		}
		return EpisodeToken(id), nil
	case strings.HasPrefix(data, "open_"):
		id := strings.TrimPrefix(data, "open_")
		if id == "" {
			return Token{}, fmt.Errorf("open token %q: %w", data, ErrMalformed)
		}
		return OpenToken(id), nil
	default:
		return Token{}, fmt.Errorf("token %q: %w", data, ErrMalformed)
	}
}
