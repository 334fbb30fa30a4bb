package v1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	if limit < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_PAGINATION", "limit must be non-negative")
		return
	}
	const maxLimit = 1000
	if limit > maxLimit {
		limit = maxLimit
	}

	events, err := s.deps.EventLog.Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "EVENT_ERROR", err.Error())
		return
	}

	resp := listResponse[EventResponse]{Items: make([]EventResponse, len(events)), Total: len(events)}
	for i, e := range events {
		resp.Items[i] = toEventResponse(e)
	}
	writeJSON(w, http.StatusOK, resp)
}

// listUploadEvents returns the upload history of one movie or episode,
// oldest first, with payloads decoded.
func (s *Server) listUploadEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	kind, err := s.deps.Library.LookupKind(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	events, err := s.deps.EventLog.ForEntity(string(kind), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "EVENT_ERROR", err.Error())
		return
	}

	resp := listResponse[EventResponse]{Items: make([]EventResponse, len(events)), Total: len(events)}
	for i, e := range events {
		resp.Items[i] = toEventResponse(e)
		data, err := s.registry.Unmarshal(e)
		if err != nil {
			s.log.Warn("undecodable event", "id", e.ID, "type", e.EventType, "error", err)
			continue
		}
		resp.Items[i].Data = data
	}
	writeJSON(w, http.StatusOK, resp)
}
