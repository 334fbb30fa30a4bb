package v1

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vmunix/reelvault/internal/contentid"
	"github.com/vmunix/reelvault/internal/library"
)

func (s *Server) addMovie(w http.ResponseWriter, r *http.Request) {
	var req addMovieRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" || req.FileRef == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "title and fileRef are required")
		return
	}

	id, err := s.deps.Encoder.ContentID(contentid.Movie, req.Title, req.Year)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	m := &library.Movie{ContentID: id, Title: req.Title, Year: req.Year, FileRef: req.FileRef}
	if err := s.deps.Library.AddMovie(m); err != nil {
		writeStoreError(w, err)
		return
	}

	queued := s.deps.Queue.Enqueue(id)
	resp := toMovieResponse(m)
	resp.Queued = &queued
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) getMovie(w http.ResponseWriter, r *http.Request) {
	m, err := s.deps.Library.GetMovie(chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMovieResponse(m))
}

var seriesCategories = map[library.SeriesType]contentid.Category{
	library.SeriesTypeWebseries: contentid.Webseries,
	library.SeriesTypeAnime:     contentid.Anime,
}

func (s *Server) addSeries(w http.ResponseWriter, r *http.Request) {
	var req addSeriesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	typ := library.SeriesType(req.Type)
	category, ok := seriesCategories[typ]
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_TYPE", "type must be webseries or anime")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "title is required")
		return
	}

	id, err := s.deps.Encoder.ContentID(category, req.Title, req.Year)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	series := &library.Series{SeriesID: id, Title: req.Title, Type: typ, Year: req.Year}
	if err := s.deps.Library.AddSeries(series); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSeriesResponse(series))
}

func (s *Server) getSeries(w http.ResponseWriter, r *http.Request) {
	series, err := s.deps.Library.GetSeries(chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSeriesResponse(series))
}

func (s *Server) addSeason(w http.ResponseWriter, r *http.Request) {
	seriesID := chi.URLParam(r, "id")
	var req addSeasonRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Season < 1 {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "season must be positive")
		return
	}
	if _, err := s.deps.Library.GetSeries(seriesID); err != nil {
		writeStoreError(w, err)
		return
	}

	season := &library.Season{SeriesID: seriesID, SeasonNumber: req.Season, Title: req.Title}
	if err := s.deps.Library.AddSeason(season); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, seasonResponse{SeriesID: seriesID, Season: season.SeasonNumber, Title: season.Title})
}

func (s *Server) listSeasons(w http.ResponseWriter, r *http.Request) {
	seriesID := chi.URLParam(r, "id")
	if _, err := s.deps.Library.GetSeries(seriesID); err != nil {
		writeStoreError(w, err)
		return
	}
	seasons, err := s.deps.Library.ListSeasons(seriesID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	resp := listResponse[seasonResponse]{Items: make([]seasonResponse, len(seasons)), Total: len(seasons)}
	for i, season := range seasons {
		resp.Items[i] = seasonResponse{SeriesID: season.SeriesID, Season: season.SeasonNumber, Title: season.Title}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) addEpisode(w http.ResponseWriter, r *http.Request) {
	seriesID := chi.URLParam(r, "id")
	seasonNum, err := pathInt(r, "season")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_SEASON", err.Error())
		return
	}
	var req addEpisodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Episode < 1 || req.FileRef == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "episode and fileRef are required")
		return
	}
	if _, err := s.deps.Library.GetSeason(seriesID, seasonNum); err != nil {
		writeStoreError(w, err)
		return
	}

	e := &library.Episode{
		ContentID:     contentid.EncodeEpisodeID(seriesID, seasonNum, req.Episode),
		SeriesID:      seriesID,
		SeasonNumber:  seasonNum,
		EpisodeNumber: req.Episode,
		Title:         req.Title,
		FileRef:       req.FileRef,
	}
	if err := s.deps.Library.AddEpisode(e); err != nil {
		writeStoreError(w, err)
		return
	}

	queued := s.deps.Queue.Enqueue(e.ContentID)
	resp := toEpisodeResponse(e)
	resp.Queued = &queued
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) listEpisodes(w http.ResponseWriter, r *http.Request) {
	seriesID := chi.URLParam(r, "id")
	seasonNum, err := pathInt(r, "season")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_SEASON", err.Error())
		return
	}

	episodes, total, err := s.deps.Library.ListEpisodes(library.EpisodeFilter{SeriesID: &seriesID, Season: &seasonNum})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	resp := listResponse[episodeResponse]{Items: make([]episodeResponse, len(episodes)), Total: total}
	for i, e := range episodes {
		resp.Items[i] = toEpisodeResponse(e)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := s.deps.Resolver.Resolve(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	resp := resolveResponse{ID: id, Variant: res.Variant.String()}
	switch {
	case res.Movie != nil:
		m := toMovieResponse(res.Movie)
		resp.Movie = &m
	case res.Episode != nil:
		e := toEpisodeResponse(res.Episode)
		resp.Episode = &e
	case res.Series != nil:
		series := toSeriesResponse(res.Series)
		resp.Series = &series
	default:
		writeJSON(w, http.StatusNotFound, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
