// internal/handlers/cleanup.go
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vmunix/reelvault/internal/events"
	"github.com/vmunix/reelvault/internal/library"
)

// CleanupConfig configures the cleanup handler.
type CleanupConfig struct {
	Interval           time.Duration
	PendingTimeout     time.Duration // pending longer than this is cancelled; 0 disables
	CancelledRetention time.Duration // cancelled items are deleted after this
	EventRetention     time.Duration // event log entries older than this are pruned; 0 disables
}

// DefaultCleanupConfig returns the standard sweep settings.
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		Interval:           5 * time.Minute,
		PendingTimeout:     24 * time.Hour,
		CancelledRetention: time.Hour,
		EventRetention:     30 * 24 * time.Hour,
	}
}

// UploadStore is the library surface used by the cleanup handler.
type UploadStore interface {
	ListUploads(f library.UploadFilter) ([]*library.Upload, error)
	TransitionUpload(kind library.Kind, contentID string, u library.UploadUpdate) error
	DeleteUpload(kind library.Kind, contentID string) error
}

// QueueChecker reports whether an id is waiting in or held by the upload queue.
type QueueChecker interface {
	Contains(id string) bool
}

// EventPruner removes old event log entries.
type EventPruner interface {
	Prune(olderThan time.Duration) (int64, error)
}

// SweepResult summarises one sweep.
type SweepResult struct {
	Cancelled int
	Purged    int
	Pruned    int64
}

// CleanupHandler cancels uploads stuck in pending and deletes cancelled
// uploads once their retention has passed.
type CleanupHandler struct {
	*BaseHandler
	store  UploadStore
	queue  QueueChecker
	pruner EventPruner
	config CleanupConfig
	now    func() time.Time
}

// NewCleanupHandler creates a new cleanup handler. queue and pruner may be nil.
func NewCleanupHandler(bus *events.Bus, store UploadStore, queue QueueChecker, pruner EventPruner, config CleanupConfig, logger *slog.Logger) *CleanupHandler {
	if config.Interval <= 0 {
		config.Interval = DefaultCleanupConfig().Interval
	}
	return &CleanupHandler{
		BaseHandler: NewBaseHandler(bus, logger),
		store:       store,
		queue:       queue,
		pruner:      pruner,
		config:      config,
		now:         time.Now,
	}
}

// Name returns the handler name.
func (h *CleanupHandler) Name() string {
	return "cleanup"
}

// Start sweeps on every interval until ctx is cancelled.
func (h *CleanupHandler) Start(ctx context.Context) error {
	return every(ctx, h.config.Interval, func(ctx context.Context) {
		res, err := h.Sweep(ctx)
		if err != nil {
			h.Logger().Error("sweep failed", "error", err)
			return
		}
		if res.Cancelled > 0 || res.Purged > 0 || res.Pruned > 0 {
			h.Logger().Info("sweep completed",
				"cancelled", res.Cancelled,
				"purged", res.Purged,
				"events_pruned", res.Pruned)
		}
	})
}

// Sweep runs one cleanup pass.
func (h *CleanupHandler) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	now := h.now().UTC()

	if h.config.PendingTimeout > 0 {
		n, err := h.cancelStale(ctx, now.Add(-h.config.PendingTimeout))
		if err != nil {
			return res, err
		}
		res.Cancelled = n
	}

	n, err := h.purgeCancelled(ctx, now.Add(-h.config.CancelledRetention))
	if err != nil {
		return res, err
	}
	res.Purged = n

	if h.pruner != nil && h.config.EventRetention > 0 {
		pruned, err := h.pruner.Prune(h.config.EventRetention)
		if err != nil {
			return res, fmt.Errorf("prune events: %w", err)
		}
		res.Pruned = pruned
	}
	return res, nil
}

func (h *CleanupHandler) cancelStale(ctx context.Context, cutoff time.Time) (int, error) {
	status := library.UploadPending
	stale, err := h.store.ListUploads(library.UploadFilter{Status: &status, UpdatedBefore: &cutoff})
	if err != nil {
		return 0, fmt.Errorf("list stale uploads: %w", err)
	}

	cancelled := 0
	for _, u := range stale {
		if h.queue != nil && h.queue.Contains(u.ContentID) {
			continue
		}
		reason := "upload timed out"
		if err := h.store.TransitionUpload(u.Kind, u.ContentID, library.UploadUpdate{Status: library.UploadCancelled, Error: reason}); err != nil {
			h.Logger().Warn("failed to cancel stale upload", "content_id", u.ContentID, "error", err)
			continue
		}
		cancelled++
		h.Publish(ctx, &events.UploadCancelled{
			BaseEvent: events.NewBaseEvent(events.EventUploadCancelled, string(u.Kind), u.ContentID),
			ContentID: u.ContentID,
			Reason:    reason,
		})
	}
	return cancelled, nil
}

func (h *CleanupHandler) purgeCancelled(ctx context.Context, cutoff time.Time) (int, error) {
	status := library.UploadCancelled
	expired, err := h.store.ListUploads(library.UploadFilter{Status: &status, UpdatedBefore: &cutoff})
	if err != nil {
		return 0, fmt.Errorf("list cancelled uploads: %w", err)
	}

	purged := 0
	for _, u := range expired {
		if err := h.store.DeleteUpload(u.Kind, u.ContentID); err != nil {
			h.Logger().Warn("failed to delete cancelled upload", "content_id", u.ContentID, "error", err)
			continue
		}
		purged++
		h.Publish(ctx, &events.UploadPurged{
			BaseEvent: events.NewBaseEvent(events.EventUploadPurged, string(u.Kind), u.ContentID),
			ContentID: u.ContentID,
		})
	}
	return purged, nil
}
