package resolve

import (
	"context"

	"github.com/vmunix/reelvault/internal/events"
)

// Watch drops cached kind tags for uploads purged from the library, so a
// freed id can be registered again under another kind. It returns when ctx
// ends or the bus closes. Without a cache it only waits for ctx.
func (r *Resolver) Watch(ctx context.Context, bus *events.Bus) error {
	if r.cache == nil || bus == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	purged := bus.Subscribe(events.EventUploadPurged, 64)
	defer bus.Unsubscribe(purged)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-purged:
			if !ok {
				return nil
			}
			if err := r.cache.Forget(ctx, e.EntityID()); err != nil {
				r.log.Warn("kind cache forget failed", "id", e.EntityID(), "error", err)
				continue
			}
			r.log.Debug("forgot purged id", "id", e.EntityID())
		}
	}
}
