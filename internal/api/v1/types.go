// internal/api/v1/types.go
package v1

import (
	"time"

	"github.com/vmunix/reelvault/internal/events"
	"github.com/vmunix/reelvault/internal/library"
)

type addMovieRequest struct {
	Title   string `json:"title"`
	Year    int    `json:"year"`
	FileRef string `json:"fileRef"`
}

type addSeriesRequest struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
	Type  string `json:"type"` // webseries or anime
}

type addSeasonRequest struct {
	Season int    `json:"season"`
	Title  string `json:"title"`
}

type addEpisodeRequest struct {
	Episode int    `json:"episode"`
	Title   string `json:"title"`
	FileRef string `json:"fileRef"`
}

type messageRefResponse struct {
	ChatID    int64 `json:"chatId"`
	MessageID int   `json:"messageId"`
}

func toMessageRef(ref *library.MessageRef) *messageRefResponse {
	if ref == nil {
		return nil
	}
	return &messageRefResponse{ChatID: ref.ChatID, MessageID: ref.MessageID}
}

type movieResponse struct {
	ContentID    string              `json:"contentId"`
	Title        string              `json:"title"`
	Year         int                 `json:"year"`
	UploadStatus string              `json:"uploadStatus"`
	UploadError  *string             `json:"uploadError,omitempty"`
	Stored       *messageRefResponse `json:"stored,omitempty"`
	Queued       *bool               `json:"queued,omitempty"`
	AddedAt      time.Time           `json:"addedAt"`
}

func toMovieResponse(m *library.Movie) movieResponse {
	return movieResponse{
		ContentID:    m.ContentID,
		Title:        m.Title,
		Year:         m.Year,
		UploadStatus: string(m.UploadStatus),
		UploadError:  m.UploadError,
		Stored:       toMessageRef(m.Stored),
		AddedAt:      m.AddedAt,
	}
}

type seriesResponse struct {
	SeriesID string    `json:"seriesId"`
	Title    string    `json:"title"`
	Type     string    `json:"type"`
	Year     int       `json:"year"`
	AddedAt  time.Time `json:"addedAt"`
}

func toSeriesResponse(s *library.Series) seriesResponse {
	return seriesResponse{
		SeriesID: s.SeriesID,
		Title:    s.Title,
		Type:     string(s.Type),
		Year:     s.Year,
		AddedAt:  s.AddedAt,
	}
}

type seasonResponse struct {
	SeriesID string `json:"seriesId"`
	Season   int    `json:"season"`
	Title    string `json:"title,omitempty"`
}

type episodeResponse struct {
	ContentID    string              `json:"contentId"`
	SeriesID     string              `json:"seriesId"`
	Season       int                 `json:"season"`
	Episode      int                 `json:"episode"`
	Title        string              `json:"title"`
	UploadStatus string              `json:"uploadStatus"`
	UploadError  *string             `json:"uploadError,omitempty"`
	Stored       *messageRefResponse `json:"stored,omitempty"`
	ShareLink    *string             `json:"shareLink,omitempty"`
	Queued       *bool               `json:"queued,omitempty"`
	AddedAt      time.Time           `json:"addedAt"`
}

func toEpisodeResponse(e *library.Episode) episodeResponse {
	return episodeResponse{
		ContentID:    e.ContentID,
		SeriesID:     e.SeriesID,
		Season:       e.SeasonNumber,
		Episode:      e.EpisodeNumber,
		Title:        e.Title,
		UploadStatus: string(e.UploadStatus),
		UploadError:  e.UploadError,
		Stored:       toMessageRef(e.Stored),
		ShareLink:    e.ShareLink,
		AddedAt:      e.AddedAt,
	}
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// queueStatusResponse is the response for GET /queue.
type queueStatusResponse struct {
	QueueSize     int       `json:"queueSize"`
	Processing    bool      `json:"processing"`
	CurrentUpload *string   `json:"currentUpload"`
	NextCheck     time.Time `json:"nextCheck"`
}

type uploadResponse struct {
	Kind      string    `json:"kind"`
	ContentID string    `json:"contentId"`
	Status    string    `json:"status"`
	Error     *string   `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type resubmitResponse struct {
	ContentID string `json:"contentId"`
	Queued    bool   `json:"queued"`
}

type resolveResponse struct {
	ID      string           `json:"id"`
	Variant string           `json:"variant"`
	Movie   *movieResponse   `json:"movie,omitempty"`
	Episode *episodeResponse `json:"episode,omitempty"`
	Series  *seriesResponse  `json:"series,omitempty"`
}

// EventResponse is the API representation of a logged event.
type EventResponse struct {
	ID         int64        `json:"id"`
	EventType  string       `json:"eventType"`
	EntityType string       `json:"entityType"`
	EntityID   string       `json:"entityId"`
	OccurredAt string       `json:"occurredAt"`
	Data       any          `json:"data,omitempty"` // decoded payload, per-upload history only
}

func toEventResponse(e events.RawEvent) EventResponse {
	return EventResponse{
		ID:         e.ID,
		EventType:  e.EventType,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		OccurredAt: e.OccurredAt.Format(time.RFC3339),
	}
}

type healthResponse struct {
	Status        string `json:"status"`
	DroppedEvents *int64 `json:"droppedEvents,omitempty"`
}
