package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/vmunix/reelvault/internal/contentid"
	"github.com/vmunix/reelvault/internal/events"
	"github.com/vmunix/reelvault/internal/library"
	"github.com/vmunix/reelvault/internal/resolve"
)

// State is a step of a conversation.
type State int

const (
	AwaitingEntry State = iota
	Resolving
	ShowSeasons
	SeasonChosen
	ShowEpisodes
	EpisodeChosen
	DeliverMovie
	DeliverEpisode
	Searching

	// Terminal states.
	AwaitingSelection // a menu was sent; the next selection starts a new event
	Delivered
	Replied // not-found, empty-state, help or error reply sent
)

var stateNames = map[State]string{
	AwaitingEntry:     "awaiting_entry",
	Resolving:         "resolving",
	ShowSeasons:       "show_seasons",
	SeasonChosen:      "season_chosen",
	ShowEpisodes:      "show_episodes",
	EpisodeChosen:     "episode_chosen",
	DeliverMovie:      "deliver_movie",
	DeliverEpisode:    "deliver_episode",
	Searching:         "searching",
	AwaitingSelection: "awaiting_selection",
	Delivered:         "delivered",
	Replied:           "replied",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether processing of the current event stops at s.
func (s State) Terminal() bool {
	return s >= AwaitingSelection
}

// conversation carries one event through the state machine.
type conversation struct {
	chatID int64
	kind   EventKind
	state  State
	input  string

	id      string
	series  *library.Series
	season  int
	movie   *library.Movie
	episode *library.Episode
}

func (d *Dispatcher) run(ctx context.Context, c *conversation) {
	for !c.state.Terminal() {
		from := c.state
		c.state = d.step(ctx, c)
		d.log.Debug("transition", "chat_id", c.chatID, "from", from, "to", c.state)
	}
}

func (d *Dispatcher) step(ctx context.Context, c *conversation) State {
	switch c.state {
	case AwaitingEntry:
		return d.enter(ctx, c)
	case Resolving:
		return d.resolve(ctx, c)
	case ShowSeasons:
		return d.showSeasons(ctx, c)
	case SeasonChosen:
		return d.chooseSeason(ctx, c)
	case ShowEpisodes:
		return d.showEpisodes(ctx, c)
	case EpisodeChosen:
		return d.chooseEpisode(ctx, c)
	case DeliverMovie:
		return d.deliverMovie(ctx, c)
	case DeliverEpisode:
		return d.deliverEpisode(ctx, c)
	case Searching:
		return d.search(ctx, c)
	default:
		d.log.Error("unexpected state", "chat_id", c.chatID, "state", c.state)
		return d.reply(ctx, c, msgFailure)
	}
}

func (d *Dispatcher) enter(ctx context.Context, c *conversation) State {
	switch c.kind {
	case EventStart:
		if c.input == "" {
			return d.reply(ctx, c, msgWelcome)
		}
		id, err := url.PathUnescape(strings.TrimSpace(c.input))
		if err != nil {
			return d.notFound(ctx, c, c.input)
		}
		c.id = id
		return Resolving

	case EventCallback:
		tok, err := contentid.ParseToken(c.input)
		if err != nil {
			return d.notFound(ctx, c, c.input)
		}
		switch tok.Kind {
		case contentid.TokenSeason:
			c.id, c.season = tok.SeriesID, tok.Season
			return SeasonChosen
		case contentid.TokenEpisode:
			c.id = tok.ID
			return EpisodeChosen
		default:
			c.id = tok.ID
			return Resolving
		}

	case EventText:
		return Searching

	default:
		return d.reply(ctx, c, msgWelcome)
	}
}

func (d *Dispatcher) resolve(ctx context.Context, c *conversation) State {
	res, err := d.resolver.Resolve(ctx, c.id)
	if err != nil {
		d.log.Error("resolve failed", "chat_id", c.chatID, "id", c.id, "error", err)
		return d.reply(ctx, c, msgFailure)
	}

	switch res.Variant {
	case resolve.Movie:
		c.movie = res.Movie
		return DeliverMovie
	case resolve.Episode:
		c.episode = res.Episode
		return DeliverEpisode
	case resolve.Series:
		c.series = res.Series
		return ShowSeasons
	default:
		return d.notFound(ctx, c, c.id)
	}
}

func (d *Dispatcher) showSeasons(ctx context.Context, c *conversation) State {
	seasons, err := d.catalog.ListSeasons(c.series.SeriesID)
	if err != nil {
		d.log.Error("list seasons failed", "chat_id", c.chatID, "series_id", c.series.SeriesID, "error", err)
		return d.reply(ctx, c, msgFailure)
	}
	if len(seasons) == 0 {
		return d.reply(ctx, c, msgNoSeasons)
	}

	buttons := make([]Button, 0, len(seasons))
	for _, s := range seasons {
		label := "Season " + strconv.Itoa(s.SeasonNumber)
		if s.Title != "" {
			label += " - " + s.Title
		}
		if b, ok := d.button(label, contentid.SeasonToken(c.series.SeriesID, s.SeasonNumber)); ok {
			buttons = append(buttons, b)
		}
	}
	return d.menu(ctx, c, fmt.Sprintf(msgChooseSeason, c.series.Title), buttons)
}

func (d *Dispatcher) chooseSeason(ctx context.Context, c *conversation) State {
	series, err := d.catalog.GetSeries(c.id)
	if err != nil {
		return d.lookupFailed(ctx, c, err)
	}
	if _, err := d.catalog.GetSeason(series.SeriesID, c.season); err != nil {
		return d.lookupFailed(ctx, c, err)
	}
	c.series = series
	return ShowEpisodes
}

func (d *Dispatcher) showEpisodes(ctx context.Context, c *conversation) State {
	seriesID, season := c.series.SeriesID, c.season
	episodes, _, err := d.catalog.ListEpisodes(library.EpisodeFilter{SeriesID: &seriesID, Season: &season})
	if err != nil {
		d.log.Error("list episodes failed", "chat_id", c.chatID, "series_id", seriesID, "season", season, "error", err)
		return d.reply(ctx, c, msgFailure)
	}
	if len(episodes) == 0 {
		return d.reply(ctx, c, msgNoEpisodes)
	}

	buttons := make([]Button, 0, len(episodes))
	for _, e := range episodes {
		label := "Episode " + strconv.Itoa(e.EpisodeNumber)
		if e.Title != "" {
			label += " - " + e.Title
		}
		if b, ok := d.button(label, contentid.EpisodeToken(e.ContentID)); ok {
			buttons = append(buttons, b)
		}
	}
	return d.menu(ctx, c, fmt.Sprintf(msgChooseEpisode, c.series.Title, season), buttons)
}

func (d *Dispatcher) chooseEpisode(ctx context.Context, c *conversation) State {
	e, err := d.catalog.GetEpisode(c.id)
	if err != nil {
		return d.lookupFailed(ctx, c, err)
	}
	c.episode = e
	return DeliverEpisode
}

func (d *Dispatcher) deliverMovie(ctx context.Context, c *conversation) State {
	m := c.movie
	if m.Stored == nil {
		return d.reply(ctx, c, msgNotReady)
	}
	caption := fmt.Sprintf(msgMovieDelivered, m.Title, m.Year)
	return d.deliver(ctx, c, library.KindMovie, m.ContentID, *m.Stored, caption)
}

func (d *Dispatcher) deliverEpisode(ctx context.Context, c *conversation) State {
	e := c.episode
	if e.Stored == nil {
		return d.reply(ctx, c, msgNotReady)
	}
	title := e.SeriesID
	if c.series != nil {
		title = c.series.Title
	} else if s, err := d.catalog.GetSeries(e.SeriesID); err == nil {
		title = s.Title
	}
	caption := fmt.Sprintf(msgEpisodeDelivered, title, e.SeasonNumber, e.EpisodeNumber)
	return d.deliver(ctx, c, library.KindEpisode, e.ContentID, *e.Stored, caption)
}

// deliver copies the stored message into the chat and confirms.
func (d *Dispatcher) deliver(ctx context.Context, c *conversation, kind library.Kind, contentID string, from library.MessageRef, caption string) State {
	msgID, err := d.messenger.CopyMessage(ctx, c.chatID, from)
	if err != nil {
		d.log.Error("copy failed", "chat_id", c.chatID, "content_id", contentID, "error", err)
		return d.reply(ctx, c, msgFailure)
	}
	if err := d.messenger.SendText(ctx, c.chatID, caption); err != nil {
		d.log.Warn("confirmation failed", "chat_id", c.chatID, "error", err)
	}

	d.log.Info("delivered", "chat_id", c.chatID, "content_id", contentID, "kind", kind)
	d.publish(ctx, &events.DeliverySent{
		BaseEvent: events.NewBaseEvent(events.EventDeliverySent, events.EntityChat, strconv.FormatInt(c.chatID, 10)),
		ChatID:    c.chatID,
		ContentID: contentID,
		Kind:      string(kind),
		MessageID: msgID,
	})
	return Delivered
}

func (d *Dispatcher) button(label string, tok contentid.Token) (Button, bool) {
	data, err := tok.Encode()
	if err != nil {
		d.log.Warn("skipping menu option", "label", label, "error", err)
		return Button{}, false
	}
	return Button{Label: label, Data: data}, true
}

func (d *Dispatcher) menu(ctx context.Context, c *conversation, text string, buttons []Button) State {
	if err := d.messenger.SendMenu(ctx, c.chatID, text, buttons); err != nil {
		d.log.Error("send menu failed", "chat_id", c.chatID, "error", err)
		return Replied
	}
	return AwaitingSelection
}

func (d *Dispatcher) lookupFailed(ctx context.Context, c *conversation, err error) State {
	if errors.Is(err, library.ErrNotFound) {
		return d.notFound(ctx, c, c.id)
	}
	d.log.Error("lookup failed", "chat_id", c.chatID, "id", c.id, "error", err)
	return d.reply(ctx, c, msgFailure)
}

func (d *Dispatcher) notFound(ctx context.Context, c *conversation, query string) State {
	d.notFoundEvent(ctx, c, query)
	return d.reply(ctx, c, msgNotFound)
}

func (d *Dispatcher) notFoundEvent(ctx context.Context, c *conversation, query string) {
	d.publish(ctx, &events.DeliveryMissed{
		BaseEvent: events.NewBaseEvent(events.EventDeliveryMissed, events.EntityChat, strconv.FormatInt(c.chatID, 10)),
		ChatID:    c.chatID,
		Query:     query,
	})
}

func (d *Dispatcher) reply(ctx context.Context, c *conversation, text string) State {
	if err := d.messenger.SendText(ctx, c.chatID, text); err != nil {
		d.log.Error("reply failed", "chat_id", c.chatID, "error", err)
	}
	return Replied
}
