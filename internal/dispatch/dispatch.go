// Package dispatch drives bot conversations from an opaque content id to the
// delivered artifact, walking users through season and episode selection.
package dispatch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vmunix/reelvault/internal/events"
	"github.com/vmunix/reelvault/internal/library"
	"github.com/vmunix/reelvault/internal/resolve"
)

//go:generate mockgen -destination=mocks/mock_messenger.go -package=mocks . Messenger

// EventKind classifies inbound bot events.
type EventKind int

const (
	EventStart    EventKind = iota // start command, Data is the raw payload
	EventCallback                  // menu selection, Data is the selection token
	EventText                      // free text, Data is the search query
	EventHelp                      // any other command
)

// Event is an inbound bot event for one chat.
type Event struct {
	Kind       EventKind
	ChatID     int64
	CallbackID string // set for EventCallback
	Data       string
}

// Button is a menu option carrying a selection token.
type Button struct {
	Label string
	Data  string
}

// Messenger is the messaging provider surface used for replies and delivery.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendMenu(ctx context.Context, chatID int64, text string, buttons []Button) error
	// CopyMessage re-emits a stored message into chatID and returns the new message id.
	CopyMessage(ctx context.Context, chatID int64, from library.MessageRef) (int, error)
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// Resolver maps ids to library entities.
type Resolver interface {
	Resolve(ctx context.Context, id string) (resolve.Resolution, error)
}

// Catalog is the read-only library surface used for menus.
type Catalog interface {
	GetSeries(seriesID string) (*library.Series, error)
	ListSeasons(seriesID string) ([]*library.Season, error)
	GetSeason(seriesID string, number int) (*library.Season, error)
	ListEpisodes(f library.EpisodeFilter) ([]*library.Episode, int, error)
	GetEpisode(contentID string) (*library.Episode, error)
	ListTitles() ([]library.Title, error)
}

// maxLaneBacklog bounds the events waiting per chat.
const maxLaneBacklog = 32

// lane holds a chat's events waiting to be processed.
type lane struct {
	queue []Event
}

// Dispatcher processes bot events. Events for one chat are handled in arrival
// order; different chats proceed concurrently.
type Dispatcher struct {
	messenger Messenger
	resolver  Resolver
	catalog   Catalog
	bus       *events.Bus
	log       *slog.Logger

	mu    sync.Mutex
	lanes map[int64]*lane
	wg    sync.WaitGroup
}

// New creates a dispatcher. bus may be nil.
func New(messenger Messenger, resolver Resolver, catalog Catalog, bus *events.Bus, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		messenger: messenger,
		resolver:  resolver,
		catalog:   catalog,
		bus:       bus,
		log:       log,
		lanes:     make(map[int64]*lane),
	}
}

// Handle queues ev on its chat's lane and returns without waiting.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	l, ok := d.lanes[ev.ChatID]
	if !ok {
		l = &lane{}
		d.lanes[ev.ChatID] = l
		d.wg.Add(1)
		go d.drain(ctx, ev.ChatID, l)
	}
	if len(l.queue) >= maxLaneBacklog {
		d.log.Warn("chat backlog full, dropping event", "chat_id", ev.ChatID, "kind", ev.Kind)
		return
	}
	l.queue = append(l.queue, ev)
}

// Wait blocks until every queued event has been processed.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) drain(ctx context.Context, chatID int64, l *lane) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		if len(l.queue) == 0 {
			delete(d.lanes, chatID)
			d.mu.Unlock()
			return
		}
		ev := l.queue[0]
		l.queue = l.queue[1:]
		d.mu.Unlock()

		d.Process(ctx, ev)
	}
}

// Process handles a single event synchronously.
func (d *Dispatcher) Process(ctx context.Context, ev Event) {
	if ev.Kind == EventCallback && ev.CallbackID != "" {
		if err := d.messenger.AnswerCallback(ctx, ev.CallbackID, ""); err != nil {
			d.log.Debug("answer callback failed", "chat_id", ev.ChatID, "error", err)
		}
	}

	d.run(ctx, &conversation{chatID: ev.ChatID, kind: ev.Kind, state: AwaitingEntry, input: ev.Data})
}

func (d *Dispatcher) publish(ctx context.Context, e events.Event) {
	if d.bus == nil {
		return
	}
	if err := d.bus.Publish(ctx, e); err != nil {
		d.log.Error("failed to publish event", "type", e.EventType(), "error", err)
	}
}
