package v1

import (
	"context"
	"errors"

	"github.com/vmunix/reelvault/internal/contentid"
	"github.com/vmunix/reelvault/internal/events"
	"github.com/vmunix/reelvault/internal/library"
	"github.com/vmunix/reelvault/internal/resolve"
	"github.com/vmunix/reelvault/internal/upload"
)

// ErrMissingDependency is returned when a required dependency is nil.
var ErrMissingDependency = errors.New("missing required dependency")

// UploadQueue is the ingestion side of the upload queue.
type UploadQueue interface {
	Enqueue(id string) bool
	Resubmit(id string) (bool, error)
	Status() upload.Status
}

// Resolver maps an id to the entity it names.
type Resolver interface {
	Resolve(ctx context.Context, id string) (resolve.Resolution, error)
}

// ServerDeps contains all dependencies for the API server.
// Required dependencies must be non-nil; optional dependencies may be nil.
type ServerDeps struct {
	// Required dependencies
	Library  *library.Store
	Queue    UploadQueue
	Resolver Resolver

	// Optional dependencies
	EventLog *events.EventLog   // nil disables the event endpoints
	Bus      *events.Bus        // nil omits droppedEvents from /health
	Encoder  *contentid.Encoder // defaults to the wall clock
}

// Validate checks that all required dependencies are provided.
func (d ServerDeps) Validate() error {
	if d.Library == nil {
		return errors.New("library store is required")
	}
	if d.Queue == nil {
		return errors.New("upload queue is required")
	}
	if d.Resolver == nil {
		return errors.New("resolver is required")
	}
	return nil
}
