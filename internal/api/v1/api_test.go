// internal/api/v1/api_test.go
package v1

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vmunix/reelvault/internal/contentid"
	"github.com/vmunix/reelvault/internal/events"
	"github.com/vmunix/reelvault/internal/library"
	"github.com/vmunix/reelvault/internal/migrations"
	"github.com/vmunix/reelvault/internal/resolve"
	"github.com/vmunix/reelvault/internal/upload"
)

type testEnv struct {
	db      *sql.DB
	store   *library.Store
	queue   *upload.Queue
	bus     *events.Bus
	handler http.Handler
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err, "open db")
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(migrations.InitialSQL)
	require.NoError(t, err, "apply schema")
	return db
}

// steppingClock advances one millisecond per call so generated ids differ.
func steppingClock() func() time.Time {
	var ms atomic.Int64
	ms.Store(1700000012345)
	return func() time.Time { return time.UnixMilli(ms.Add(1) - 1) }
}

func newTestEnv(t *testing.T, withLog bool) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	store := library.NewStore(db)

	var eventLog *events.EventLog
	if withLog {
		eventLog = events.NewEventLog(db)
	}
	bus := events.NewBus(eventLog, nil)
	t.Cleanup(func() { _ = bus.Close() })
	queue := upload.New(store, nil, bus, upload.DefaultConfig(), nil)

	srv, err := New(ServerDeps{
		Library:  store,
		Queue:    queue,
		Resolver: resolve.New(store, nil, nil),
		EventLog: eventLog,
		Bus:      bus,
		Encoder:  contentid.NewEncoder(steppingClock()),
	}, nil)
	require.NoError(t, err)
	return &testEnv{db: db, store: store, queue: queue, bus: bus, handler: srv.Routes()}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func TestNew_MissingDependencies(t *testing.T) {
	_, err := New(ServerDeps{}, nil)
	require.ErrorIs(t, err, ErrMissingDependency)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, false)
	w := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","droppedEvents":0}`, w.Body.String())
}

func TestHealth_ReportsDroppedEvents(t *testing.T) {
	env := newTestEnv(t, false)
	_ = env.bus.Subscribe(events.EventUploadEnqueued, 0)
	require.NoError(t, env.store.AddMovie(&library.Movie{ContentID: "mo_heat_1995_00001", Title: "Heat", Year: 1995, FileRef: "f"}))
	require.True(t, env.queue.Enqueue("mo_heat_1995_00001"))

	w := env.do(t, http.MethodGet, "/health", nil)
	assert.JSONEq(t, `{"status":"ok","droppedEvents":1}`, w.Body.String())
}

func TestAddMovie_EnqueuesUpload(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(t, http.MethodPost, "/api/v1/movies", addMovieRequest{Title: "The Matrix", Year: 1999, FileRef: "file-1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[movieResponse](t, w)
	assert.Equal(t, "mo_the_matrix_1999_12345", resp.ContentID)
	assert.Equal(t, "pending", resp.UploadStatus)
	require.NotNil(t, resp.Queued)
	assert.True(t, *resp.Queued)

	assert.True(t, env.queue.Contains(resp.ContentID))

	m, err := env.store.GetMovie(resp.ContentID)
	require.NoError(t, err)
	assert.Equal(t, "file-1", m.FileRef)
}

func TestAddMovie_Validation(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(t, http.MethodPost, "/api/v1/movies", addMovieRequest{Title: "", Year: 1999, FileRef: "f"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/movies", addMovieRequest{Title: "Heat", Year: 0, FileRef: "f"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", decode[errorResponse](t, w).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/movies", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_JSON", decode[errorResponse](t, rec).Code)

	assert.Equal(t, 0, env.queue.Status().QueueSize)
}

func TestGetMovie_NotFound(t *testing.T) {
	env := newTestEnv(t, false)
	w := env.do(t, http.MethodGet, "/api/v1/movies/mo_missing_2000_00000", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode[errorResponse](t, w).Code)
}

func TestSeriesSeasonEpisodeFlow(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(t, http.MethodPost, "/api/v1/series", addSeriesRequest{Title: "Demo Show", Year: 2021, Type: "anime"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	series := decode[seriesResponse](t, w)
	assert.Equal(t, "an_demo_show_2021_12345", series.SeriesID)
	assert.Equal(t, "anime", series.Type)

	w = env.do(t, http.MethodPost, "/api/v1/series/"+series.SeriesID+"/seasons", addSeasonRequest{Season: 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/v1/series/"+series.SeriesID+"/seasons/1/episodes",
		addEpisodeRequest{Episode: 2, Title: "Second", FileRef: "file-ep2"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ep := decode[episodeResponse](t, w)
	assert.Equal(t, series.SeriesID+"_s01e02", ep.ContentID)
	require.NotNil(t, ep.Queued)
	assert.True(t, *ep.Queued)
	assert.True(t, env.queue.Contains(ep.ContentID))

	w = env.do(t, http.MethodGet, "/api/v1/series/"+series.SeriesID+"/seasons", nil)
	require.Equal(t, http.StatusOK, w.Code)
	seasons := decode[listResponse[seasonResponse]](t, w)
	require.Len(t, seasons.Items, 1)
	assert.Equal(t, 1, seasons.Items[0].Season)

	w = env.do(t, http.MethodGet, "/api/v1/series/"+series.SeriesID+"/seasons/1/episodes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	episodes := decode[listResponse[episodeResponse]](t, w)
	require.Len(t, episodes.Items, 1)
	assert.Equal(t, 2, episodes.Items[0].Episode)
}

func TestAddSeries_InvalidType(t *testing.T) {
	env := newTestEnv(t, false)
	w := env.do(t, http.MethodPost, "/api/v1/series", addSeriesRequest{Title: "Show", Year: 2020, Type: "sitcom"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_TYPE", decode[errorResponse](t, w).Code)
}

func TestAddSeason_UnknownSeries(t *testing.T) {
	env := newTestEnv(t, false)
	w := env.do(t, http.MethodPost, "/api/v1/series/ws_nope_2020_00000/seasons", addSeasonRequest{Season: 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddSeason_Duplicate(t *testing.T) {
	env := newTestEnv(t, false)
	require.NoError(t, env.store.AddSeries(&library.Series{SeriesID: "ws_show_2020_00001", Title: "Show", Type: library.SeriesTypeWebseries, Year: 2020}))

	w := env.do(t, http.MethodPost, "/api/v1/series/ws_show_2020_00001/seasons", addSeasonRequest{Season: 1})
	require.Equal(t, http.StatusCreated, w.Code)
	w = env.do(t, http.MethodPost, "/api/v1/series/ws_show_2020_00001/seasons", addSeasonRequest{Season: 1})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAddEpisode_UnknownSeason(t *testing.T) {
	env := newTestEnv(t, false)
	require.NoError(t, env.store.AddSeries(&library.Series{SeriesID: "ws_show_2020_00001", Title: "Show", Type: library.SeriesTypeWebseries, Year: 2020}))

	w := env.do(t, http.MethodPost, "/api/v1/series/ws_show_2020_00001/seasons/3/episodes",
		addEpisodeRequest{Episode: 1, FileRef: "f"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/series/ws_show_2020_00001/seasons/zero/episodes",
		addEpisodeRequest{Episode: 1, FileRef: "f"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueueStatus(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(t, http.MethodGet, "/api/v1/queue", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"currentUpload":null`)

	env.queue.Enqueue("mo_a_2000_00001")
	env.queue.Enqueue("mo_b_2000_00002")

	w = env.do(t, http.MethodGet, "/api/v1/queue", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(2), resp["queueSize"])
	assert.Equal(t, false, resp["processing"])
	assert.Equal(t, "mo_a_2000_00001", resp["currentUpload"])
	assert.Contains(t, resp, "nextCheck")
}

func TestResubmit(t *testing.T) {
	env := newTestEnv(t, false)
	m := &library.Movie{ContentID: "mo_heat_1995_00001", Title: "Heat", Year: 1995, FileRef: "f"}
	require.NoError(t, env.store.AddMovie(m))
	require.NoError(t, env.store.TransitionUpload(library.KindMovie, m.ContentID, library.UploadUpdate{Status: library.UploadProcessing}))
	require.NoError(t, env.store.TransitionUpload(library.KindMovie, m.ContentID, library.UploadUpdate{Status: library.UploadFailed, Error: "boom"}))

	w := env.do(t, http.MethodPost, "/api/v1/uploads/"+m.ContentID, nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.True(t, decode[resubmitResponse](t, w).Queued)

	got, err := env.store.GetMovie(m.ContentID)
	require.NoError(t, err)
	assert.Equal(t, library.UploadPending, got.UploadStatus)
	assert.True(t, env.queue.Contains(m.ContentID))
}

func TestResubmit_Completed(t *testing.T) {
	env := newTestEnv(t, false)
	m := &library.Movie{ContentID: "mo_heat_1995_00001", Title: "Heat", Year: 1995, FileRef: "f"}
	require.NoError(t, env.store.AddMovie(m))
	require.NoError(t, env.store.TransitionUpload(library.KindMovie, m.ContentID, library.UploadUpdate{Status: library.UploadProcessing}))
	require.NoError(t, env.store.TransitionUpload(library.KindMovie, m.ContentID, library.UploadUpdate{
		Status: library.UploadCompleted,
		Stored: &library.MessageRef{ChatID: -1001, MessageID: 5},
	}))

	w := env.do(t, http.MethodPost, "/api/v1/uploads/"+m.ContentID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_STATE", decode[errorResponse](t, w).Code)
}

func TestResubmit_NotFound(t *testing.T) {
	env := newTestEnv(t, false)
	w := env.do(t, http.MethodPost, "/api/v1/uploads/mo_missing_2000_00000", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListUploads(t *testing.T) {
	env := newTestEnv(t, false)
	require.NoError(t, env.store.AddMovie(&library.Movie{ContentID: "mo_a_2000_00001", Title: "A", Year: 2000, FileRef: "f"}))
	require.NoError(t, env.store.AddMovie(&library.Movie{ContentID: "mo_b_2000_00002", Title: "B", Year: 2000, FileRef: "f"}))
	require.NoError(t, env.store.TransitionUpload(library.KindMovie, "mo_b_2000_00002", library.UploadUpdate{Status: library.UploadCancelled, Error: "upload timed out"}))

	w := env.do(t, http.MethodGet, "/api/v1/uploads?status=pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[listResponse[uploadResponse]](t, w)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "mo_a_2000_00001", resp.Items[0].ContentID)
	assert.Equal(t, "movie", resp.Items[0].Kind)

	w = env.do(t, http.MethodGet, "/api/v1/uploads?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResolveEndpoint(t *testing.T) {
	env := newTestEnv(t, false)
	require.NoError(t, env.store.AddSeries(&library.Series{SeriesID: "demo123", Title: "Demo", Type: library.SeriesTypeWebseries, Year: 2020}))

	w := env.do(t, http.MethodGet, "/api/v1/resolve/demo123", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[resolveResponse](t, w)
	assert.Equal(t, "series", resp.Variant)
	require.NotNil(t, resp.Series)
	assert.Equal(t, "Demo", resp.Series.Title)

	w = env.do(t, http.MethodGet, "/api/v1/resolve/DEMO123", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "demo123", decode[resolveResponse](t, w).Series.SeriesID)

	w = env.do(t, http.MethodGet, "/api/v1/resolve/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode[resolveResponse](t, w).Variant)
}

func TestListEvents(t *testing.T) {
	env := newTestEnv(t, true)
	log := events.NewEventLog(env.db)
	_, err := log.Append(&events.UploadEnqueued{
		BaseEvent: events.NewBaseEvent(events.EventUploadEnqueued, events.EntityMovie, "mo_a_2000_00001"),
		ContentID: "mo_a_2000_00001",
		Position:  1,
	})
	require.NoError(t, err)

	w := env.do(t, http.MethodGet, "/api/v1/events?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[listResponse[EventResponse]](t, w)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, events.EventUploadEnqueued, resp.Items[0].EventType)
	assert.Equal(t, "mo_a_2000_00001", resp.Items[0].EntityID)
}

func TestListUploadEvents(t *testing.T) {
	env := newTestEnv(t, true)
	require.NoError(t, env.store.AddMovie(&library.Movie{ContentID: "mo_heat_1995_00001", Title: "Heat", Year: 1995, FileRef: "f"}))
	require.NoError(t, env.store.AddMovie(&library.Movie{ContentID: "mo_up_2009_00001", Title: "Up", Year: 2009, FileRef: "f"}))
	require.True(t, env.queue.Enqueue("mo_heat_1995_00001"))
	require.True(t, env.queue.Enqueue("mo_up_2009_00001"))

	w := env.do(t, http.MethodGet, "/api/v1/uploads/mo_up_2009_00001/events", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[listResponse[EventResponse]](t, w)
	require.Len(t, resp.Items, 1)
	item := resp.Items[0]
	assert.Equal(t, events.EventUploadEnqueued, item.EventType)
	assert.Equal(t, events.EntityMovie, item.EntityType)

	data, ok := item.Data.(map[string]any)
	require.True(t, ok, "payload decoded: %#v", item.Data)
	assert.Equal(t, "mo_up_2009_00001", data["content_id"])
	assert.EqualValues(t, 2, data["position"])
}

func TestListUploadEvents_UnknownID(t *testing.T) {
	env := newTestEnv(t, true)
	w := env.do(t, http.MethodGet, "/api/v1/uploads/mo_nope_2000_00001/events", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListEvents_NotConfigured(t *testing.T) {
	env := newTestEnv(t, false)
	w := env.do(t, http.MethodGet, "/api/v1/events", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/uploads/mo_heat_1995_00001/events", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
