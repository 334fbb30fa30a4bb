// Package library stores the delivered catalogue: movies, series, seasons and
// episodes, together with the upload state of every forwardable artifact.
package library

import (
	"time"
)

// Kind tags an identifier with the entity it names. Every id registered in the
// library lives in a single shared namespace keyed by this tag.
type Kind string

const (
	KindMovie   Kind = "movie"
	KindSeries  Kind = "series"
	KindEpisode Kind = "episode"
)

// SeriesType distinguishes the two series catalogues.
type SeriesType string

const (
	SeriesTypeWebseries SeriesType = "webseries"
	SeriesTypeAnime     SeriesType = "anime"
)

// Valid reports whether t is a known series type.
func (t SeriesType) Valid() bool {
	return t == SeriesTypeWebseries || t == SeriesTypeAnime
}

// MessageRef addresses a message held by the messaging provider.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Movie is a single forwardable content item.
type Movie struct {
	ContentID    string
	Title        string
	Year         int
	FileRef      string // provider file reference received at ingestion
	UploadStatus UploadStatus
	UploadError  *string
	Stored       *MessageRef // nil until uploaded
	AddedAt      time.Time
	UpdatedAt    time.Time
}

// Series groups seasons of a webseries or anime.
type Series struct {
	SeriesID  string
	Title     string
	Type      SeriesType
	Year      int
	AddedAt   time.Time
	UpdatedAt time.Time
}

// Season is a numbered season within a series.
type Season struct {
	SeriesID     string
	SeasonNumber int
	Title        string
	AddedAt      time.Time
}

// Episode is a forwardable episode within a season.
type Episode struct {
	ContentID     string
	SeriesID      string
	SeasonNumber  int
	EpisodeNumber int
	Title         string
	FileRef       string
	UploadStatus  UploadStatus
	UploadError   *string
	Stored        *MessageRef
	ShareLink     *string
	AddedAt       time.Time
	UpdatedAt     time.Time
}
