package telegram

import (
	"context"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vmunix/reelvault/internal/dispatch"
)

// Handler receives bot events.
type Handler interface {
	Handle(ctx context.Context, ev dispatch.Event)
}

// Poller long-polls the Bot API for updates and hands them to a Handler.
type Poller struct {
	client     *Client
	handler    Handler
	timeout    time.Duration
	retryDelay time.Duration
	log        *slog.Logger
}

// NewPoller creates a poller. timeout is the long-poll wait per request.
func NewPoller(client *Client, handler Handler, timeout time.Duration, log *slog.Logger) *Poller {
	if log == nil {
		log = slog.Default()
	}
	return &Poller{
		client:     client,
		handler:    handler,
		timeout:    timeout,
		retryDelay: 3 * time.Second,
		log:        log,
	}
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.log.Info("poller started", "timeout", p.timeout)
	offset := 0
	for {
		if ctx.Err() != nil {
			p.log.Info("poller stopped")
			return ctx.Err()
		}

		cfg := tgbotapi.NewUpdate(offset)
		cfg.Timeout = int(p.timeout.Seconds())
		cfg.AllowedUpdates = []string{"message", "callback_query"}

		updates, err := call(ctx, p.client, func(bot *tgbotapi.BotAPI) ([]tgbotapi.Update, error) { return bot.GetUpdates(cfg) })
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.log.Warn("get updates failed", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(p.retryDelay):
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			if ev, ok := toEvent(u); ok {
				p.handler.Handle(ctx, ev)
			}
		}
	}
}

// toEvent converts an update into a dispatcher event. Updates the dispatcher
// has no use for are skipped.
func toEvent(u tgbotapi.Update) (dispatch.Event, bool) {
	switch {
	case u.CallbackQuery != nil:
		cq := u.CallbackQuery
		if cq.Message == nil || cq.Message.Chat == nil {
			return dispatch.Event{}, false
		}
		return dispatch.Event{
			Kind:       dispatch.EventCallback,
			ChatID:     cq.Message.Chat.ID,
			CallbackID: cq.ID,
			Data:       cq.Data,
		}, true

	case u.Message != nil && u.Message.Chat != nil:
		m := u.Message
		if m.IsCommand() {
			if m.Command() != "start" {
				return dispatch.Event{Kind: dispatch.EventHelp, ChatID: m.Chat.ID}, true
			}
			return dispatch.Event{
				Kind:   dispatch.EventStart,
				ChatID: m.Chat.ID,
				Data:   m.CommandArguments(),
			}, true
		}
		if m.Text == "" {
			return dispatch.Event{}, false
		}
		return dispatch.Event{
			Kind:   dispatch.EventText,
			ChatID: m.Chat.ID,
			Data:   m.Text,
		}, true
	}
	return dispatch.Event{}, false
}
