// Package upload forwards newly registered artifacts into their storage
// channels, one at a time, recording the outcome on the library entity.
package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vmunix/reelvault/internal/contentid"
	"github.com/vmunix/reelvault/internal/events"
	"github.com/vmunix/reelvault/internal/library"
)

// Store is the library surface used by the queue.
type Store interface {
	LookupKind(id string) (library.Kind, error)
	GetMovie(contentID string) (*library.Movie, error)
	GetEpisode(contentID string) (*library.Episode, error)
	GetSeries(seriesID string) (*library.Series, error)
	GetUpload(kind library.Kind, contentID string) (*library.Upload, error)
	ListUploads(f library.UploadFilter) ([]*library.Upload, error)
	TransitionUpload(kind library.Kind, contentID string, u library.UploadUpdate) error
}

// Forwarder places a file into a channel.
type Forwarder interface {
	Forward(ctx context.Context, fileRef string, channel int64, caption string) (library.MessageRef, error)
}

// Channels are the storage channel ids per catalogue.
type Channels struct {
	Movies    int64
	Webseries int64
	Anime     int64
}

// Config controls the worker's pacing and retry policy.
type Config struct {
	Channels       Channels
	LinkBase       string        // base URL for episode share links
	IdleDelay      time.Duration // re-check delay when the queue is empty
	SettleDelay    time.Duration // pause after each attempt
	AttemptTimeout time.Duration // bound on a single provider call
	MaxAttempts    int           // provider calls per dequeue, transient failures only
	RetryBackoff   time.Duration // first backoff interval between provider calls
}

// DefaultConfig returns the standard pacing.
func DefaultConfig() Config {
	return Config{
		LinkBase:       DefaultLinkBase,
		IdleDelay:      5 * time.Second,
		SettleDelay:    time.Second,
		AttemptTimeout: 2 * time.Minute,
		MaxAttempts:    3,
		RetryBackoff:   2 * time.Second,
	}
}

// Status is a point-in-time view of the queue.
type Status struct {
	QueueSize  int
	Processing bool
	Current    string // id being forwarded, empty when idle
	Head       string // next id to be forwarded, empty when the queue is empty
	NextCheck  time.Time
}

// Queue is a FIFO of content ids drained by a single worker. The pending
// sequence and the single-flight flag are owned by the Queue and only
// reachable through Enqueue and Status.
type Queue struct {
	store     Store
	forwarder Forwarder
	bus       *events.Bus
	config    Config
	log       *slog.Logger
	now       func() time.Time

	mu         sync.Mutex
	pending    []string
	current    string
	processing bool
	nextCheck  time.Time

	wake chan struct{}
}

// New creates a queue. bus may be nil.
func New(store Store, forwarder Forwarder, bus *events.Bus, cfg Config, log *slog.Logger) *Queue {
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.LinkBase == "" {
		cfg.LinkBase = DefaultLinkBase
	}
	return &Queue{
		store:     store,
		forwarder: forwarder,
		bus:       bus,
		config:    cfg,
		log:       log,
		now:       time.Now,
		wake:      make(chan struct{}, 1),
	}
}

// Name returns the component name.
func (q *Queue) Name() string {
	return "upload"
}

// Enqueue appends id unless it is already waiting or being forwarded.
// It reports whether id was added.
func (q *Queue) Enqueue(id string) bool {
	q.mu.Lock()
	if id == "" || id == q.current || q.indexOf(id) >= 0 {
		q.mu.Unlock()
		return false
	}
	q.pending = append(q.pending, id)
	position := len(q.pending)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}

	q.log.Debug("enqueued", "content_id", id, "position", position)
	q.publish(context.Background(), &events.UploadEnqueued{
		BaseEvent: events.NewBaseEvent(events.EventUploadEnqueued, string(q.classify(id)), id),
		ContentID: id,
		Position:  position,
	})
	return true
}

// indexOf must be called with mu held.
func (q *Queue) indexOf(id string) int {
	for i, p := range q.pending {
		if p == id {
			return i
		}
	}
	return -1
}

// Contains reports whether id is waiting or being forwarded.
func (q *Queue) Contains(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return id == q.current || q.indexOf(id) >= 0
}

// Status returns a snapshot of the queue. It never waits on the worker.
func (q *Queue) Status() Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	s := Status{
		QueueSize:  len(q.pending),
		Processing: q.processing,
		Current:    q.current,
		NextCheck:  q.nextCheck,
	}
	if len(q.pending) > 0 {
		s.Head = q.pending[0]
	}
	return s
}

// Resubmit makes a registered artifact eligible for forwarding again and
// enqueues it. Failed artifacts move back to pending; pending ones are simply
// enqueued. Anything else returns library.ErrInvalidTransition.
func (q *Queue) Resubmit(id string) (bool, error) {
	kind := q.classify(id)
	u, err := q.store.GetUpload(kind, id)
	if err != nil {
		return false, err
	}

	switch u.Status {
	case library.UploadPending:
	case library.UploadFailed:
		if err := q.store.TransitionUpload(kind, id, library.UploadUpdate{Status: library.UploadPending}); err != nil {
			return false, err
		}
	default:
		return false, fmt.Errorf("%w: %s %q is %s", library.ErrInvalidTransition, kind, id, u.Status)
	}
	return q.Enqueue(id), nil
}

// Reconcile restores queue state after a restart: artifacts left processing
// are marked failed and pending ones are enqueued, oldest first.
func (q *Queue) Reconcile(ctx context.Context) error {
	processing := library.UploadProcessing
	stuck, err := q.store.ListUploads(library.UploadFilter{Status: &processing})
	if err != nil {
		return fmt.Errorf("list processing uploads: %w", err)
	}
	for _, u := range stuck {
		reason := "interrupted before completion"
		if err := q.store.TransitionUpload(u.Kind, u.ContentID, library.UploadUpdate{Status: library.UploadFailed, Error: reason}); err != nil {
			q.log.Error("failed to reset interrupted upload", "content_id", u.ContentID, "error", err)
			continue
		}
		q.publish(ctx, &events.UploadFailed{
			BaseEvent: events.NewBaseEvent(events.EventUploadFailed, string(u.Kind), u.ContentID),
			ContentID: u.ContentID,
			Reason:    reason,
		})
	}

	pending := library.UploadPending
	waiting, err := q.store.ListUploads(library.UploadFilter{Status: &pending})
	if err != nil {
		return fmt.Errorf("list pending uploads: %w", err)
	}
	for _, u := range waiting {
		q.Enqueue(u.ContentID)
	}

	if len(stuck) > 0 || len(waiting) > 0 {
		q.log.Info("reconciled uploads", "interrupted", len(stuck), "requeued", len(waiting))
	}
	return nil
}

// Start runs the worker until ctx is cancelled.
func (q *Queue) Start(ctx context.Context) error {
	q.log.Info("upload worker started")
	for {
		wait, idle := q.config.IdleDelay, true
		if id, ok := q.dequeue(); ok {
			q.process(ctx, id)
			q.finish()
			wait, idle = q.config.SettleDelay, false
		}

		q.mu.Lock()
		q.nextCheck = q.now().Add(wait)
		q.mu.Unlock()

		if err := q.sleep(ctx, wait, idle); err != nil {
			q.log.Info("upload worker stopped")
			return err
		}
	}
}

// sleep waits for d. An idle wait also ends early when an id is enqueued.
func (q *Queue) sleep(ctx context.Context, d time.Duration, wakeable bool) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	var wake <-chan struct{}
	if wakeable {
		wake = q.wake
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	case <-wake:
	}
	return nil
}

func (q *Queue) dequeue() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.processing || len(q.pending) == 0 {
		return "", false
	}
	id := q.pending[0]
	q.pending = q.pending[1:]
	q.current = id
	q.processing = true
	return id, true
}

func (q *Queue) finish() {
	q.mu.Lock()
	q.current = ""
	q.processing = false
	q.mu.Unlock()
}

// classify returns the kind of id. The tag recorded at registration is
// authoritative; ids without one are classified by their episode markers.
func (q *Queue) classify(id string) library.Kind {
	kind, err := q.store.LookupKind(id)
	if err == nil {
		return kind
	}
	if !errors.Is(err, library.ErrNotFound) {
		q.log.Warn("kind lookup failed, classifying by id", "content_id", id, "error", err)
	}
	if contentid.HasEpisodeMarkers(id) {
		if _, err := contentid.ParseEpisodeID(id); err == nil {
			return library.KindEpisode
		}
	}
	return library.KindMovie
}

func (q *Queue) publish(ctx context.Context, e events.Event) {
	if q.bus == nil {
		return
	}
	if err := q.bus.Publish(ctx, e); err != nil {
		q.log.Error("failed to publish event", "type", e.EventType(), "error", err)
	}
}
