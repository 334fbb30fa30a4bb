package library

import "time"

// MovieFilter specifies criteria for listing movies.
type MovieFilter struct {
	Status *UploadStatus
	Limit  int // 0 = no limit
	Offset int
}

// EpisodeFilter specifies criteria for listing episodes.
type EpisodeFilter struct {
	SeriesID *string
	Season   *int
	Status   *UploadStatus
	Limit    int
	Offset   int
}

// UploadFilter selects forwardable artifacts across movies and episodes.
type UploadFilter struct {
	Status        *UploadStatus
	UpdatedBefore *time.Time
	Limit         int
}
