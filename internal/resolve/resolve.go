// Package resolve maps an opaque identifier to the library entity it names.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vmunix/reelvault/internal/library"
)

// ErrNotFound is returned by Resolution.Err when nothing matched.
var ErrNotFound = errors.New("content not found")

// Variant identifies which entity a Resolution carries.
type Variant int

const (
	NotFound Variant = iota
	Movie
	Episode
	Series
)

func (v Variant) String() string {
	switch v {
	case Movie:
		return "movie"
	case Episode:
		return "episode"
	case Series:
		return "series"
	default:
		return "not_found"
	}
}

// Resolution is the outcome of resolving an id. Exactly one of the entity
// fields is set unless Variant is NotFound.
type Resolution struct {
	Variant Variant
	Movie   *library.Movie
	Episode *library.Episode
	Series  *library.Series
}

// Err returns ErrNotFound for an unmatched resolution.
func (r Resolution) Err() error {
	if r.Variant == NotFound {
		return ErrNotFound
	}
	return nil
}

// Store is the read-only library surface used for resolution.
type Store interface {
	LookupKind(id string) (library.Kind, error)
	GetMovie(contentID string) (*library.Movie, error)
	GetEpisode(contentID string) (*library.Episode, error)
	GetSeries(seriesID string) (*library.Series, error)
	FindSeriesFold(seriesID string) (*library.Series, error)
}

// Cache remembers the kind tag of ids. Implementations may be lossy.
type Cache interface {
	GetKind(ctx context.Context, id string) (library.Kind, bool, error)
	SetKind(ctx context.Context, id string, kind library.Kind) error
	Forget(ctx context.Context, id string) error
}

// Resolver resolves ids against the library.
type Resolver struct {
	store Store
	cache Cache
	log   *slog.Logger
}

// New creates a resolver. cache may be nil.
func New(store Store, cache Cache, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{store: store, cache: cache, log: log}
}

// Resolve determines which entity id names.
//
// The kind tag recorded at registration is consulted first. Ids without a
// usable tag are probed in a fixed order: movie, episode, series by exact id,
// then series by case-insensitive id. The first match wins. A miss everywhere
// yields a NotFound resolution, not an error; errors are reserved for store
// failures.
func (r *Resolver) Resolve(ctx context.Context, id string) (Resolution, error) {
	if id == "" {
		return Resolution{}, nil
	}

	kind, ok := r.kind(ctx, id)
	if ok {
		res, err := r.fetch(kind, id)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, library.ErrNotFound) {
			return Resolution{}, err
		}
		r.log.Debug("indexed id missing, probing", "id", id, "kind", kind)
	}

	return r.probe(id)
}

// kind returns the tag for id from the cache or the index.
func (r *Resolver) kind(ctx context.Context, id string) (library.Kind, bool) {
	if r.cache != nil {
		kind, ok, err := r.cache.GetKind(ctx, id)
		if err != nil {
			r.log.Warn("kind cache read failed", "id", id, "error", err)
		} else if ok {
			return kind, true
		}
	}

	kind, err := r.store.LookupKind(id)
	if err != nil {
		if !errors.Is(err, library.ErrNotFound) {
			r.log.Warn("kind lookup failed", "id", id, "error", err)
		}
		return "", false
	}

	if r.cache != nil {
		if err := r.cache.SetKind(ctx, id, kind); err != nil {
			r.log.Warn("kind cache write failed", "id", id, "error", err)
		}
	}
	return kind, true
}

func (r *Resolver) fetch(kind library.Kind, id string) (Resolution, error) {
	switch kind {
	case library.KindMovie:
		m, err := r.store.GetMovie(id)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Variant: Movie, Movie: m}, nil
	case library.KindEpisode:
		e, err := r.store.GetEpisode(id)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Variant: Episode, Episode: e}, nil
	case library.KindSeries:
		s, err := r.store.GetSeries(id)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Variant: Series, Series: s}, nil
	default:
		return Resolution{}, fmt.Errorf("unknown kind %q for %q: %w", kind, id, library.ErrNotFound)
	}
}

func (r *Resolver) probe(id string) (Resolution, error) {
	probes := []struct {
		name string
		fn   func() (Resolution, error)
	}{
		{"movie", func() (Resolution, error) { return r.fetch(library.KindMovie, id) }},
		{"episode", func() (Resolution, error) { return r.fetch(library.KindEpisode, id) }},
		{"series", func() (Resolution, error) { return r.fetch(library.KindSeries, id) }},
		{"series_fold", func() (Resolution, error) {
			s, err := r.store.FindSeriesFold(id)
			if err != nil {
				return Resolution{}, err
			}
			return Resolution{Variant: Series, Series: s}, nil
		}},
	}

	for _, p := range probes {
		res, err := p.fn()
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, library.ErrNotFound) {
			return Resolution{}, fmt.Errorf("probe %s %q: %w", p.name, id, err)
		}
	}
	return Resolution{}, nil
}
