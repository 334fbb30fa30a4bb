package v1

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vmunix/reelvault/internal/library"
)

// queueStatus reports the in-flight id, or the next one when idle.
func (s *Server) queueStatus(w http.ResponseWriter, r *http.Request) {
	st := s.deps.Queue.Status()
	resp := queueStatusResponse{
		QueueSize:  st.QueueSize,
		Processing: st.Processing,
		NextCheck:  st.NextCheck,
	}
	switch {
	case st.Current != "":
		resp.CurrentUpload = &st.Current
	case st.Head != "":
		resp.CurrentUpload = &st.Head
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listUploads(w http.ResponseWriter, r *http.Request) {
	f := library.UploadFilter{Limit: queryInt(r, "limit", 100)}
	if f.Limit < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_PAGINATION", "limit must be non-negative")
		return
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := library.UploadStatus(v)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "INVALID_STATUS", "unknown upload status "+v)
			return
		}
		f.Status = &status
	}

	uploads, err := s.deps.Library.ListUploads(f)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	resp := listResponse[uploadResponse]{Items: make([]uploadResponse, len(uploads)), Total: len(uploads)}
	for i, u := range uploads {
		resp.Items[i] = uploadResponse{
			Kind:      string(u.Kind),
			ContentID: u.ContentID,
			Status:    string(u.Status),
			Error:     u.Error,
			UpdatedAt: u.UpdatedAt,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// resubmit re-enqueues a pending or failed artifact.
func (s *Server) resubmit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	queued, err := s.deps.Queue.Resubmit(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, resubmitResponse{ContentID: id, Queued: queued})
}
