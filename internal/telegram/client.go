// Package telegram adapts the Telegram Bot API to the forwarder and
// dispatcher interfaces.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vmunix/reelvault/internal/dispatch"
	"github.com/vmunix/reelvault/internal/forward"
	"github.com/vmunix/reelvault/internal/library"
)

// DefaultEndpoint is the public Bot API endpoint template.
const DefaultEndpoint = tgbotapi.APIEndpoint

// Client is a Bot API client.
type Client struct {
	bot *tgbotapi.BotAPI
	log *slog.Logger
}

// Options configures a Client.
type Options struct {
	Endpoint   string // defaults to DefaultEndpoint
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// New connects to the Bot API and verifies the token.
func New(token string, opts Options) (*Client, error) {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 2 * time.Minute}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	bot, err := tgbotapi.NewBotAPIWithClient(token, opts.Endpoint, opts.HTTPClient)
	if err != nil {
		return nil, fmt.Errorf("connect bot api: %w", convertError(err))
	}
	log.Info("bot connected", "username", bot.Self.UserName)
	return &Client{bot: bot, log: log}, nil
}

// Username returns the bot's username.
func (c *Client) Username() string {
	return c.bot.Self.UserName
}

// SendDocument implements forward.Transport.
func (c *Client) SendDocument(ctx context.Context, chatID int64, fileRef, caption string) (int, error) {
	cfg := tgbotapi.NewDocument(chatID, tgbotapi.FileID(fileRef))
	cfg.Caption = caption
	msg, err := call(ctx, c, func(bot *tgbotapi.BotAPI) (tgbotapi.Message, error) { return bot.Send(cfg) })
	if err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

// SendVideo implements forward.Transport.
func (c *Client) SendVideo(ctx context.Context, chatID int64, fileRef, caption string, streaming bool) (int, error) {
	cfg := tgbotapi.NewVideo(chatID, tgbotapi.FileID(fileRef))
	cfg.Caption = caption
	cfg.SupportsStreaming = streaming
	msg, err := call(ctx, c, func(bot *tgbotapi.BotAPI) (tgbotapi.Message, error) { return bot.Send(cfg) })
	if err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

// SendText implements dispatch.Messenger.
func (c *Client) SendText(ctx context.Context, chatID int64, text string) error {
	cfg := tgbotapi.NewMessage(chatID, text)
	_, err := call(ctx, c, func(bot *tgbotapi.BotAPI) (tgbotapi.Message, error) { return bot.Send(cfg) })
	return err
}

// SendMenu implements dispatch.Messenger. Each button gets its own row.
func (c *Client) SendMenu(ctx context.Context, chatID int64, text string, buttons []dispatch.Button) error {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data)))
	}
	cfg := tgbotapi.NewMessage(chatID, text)
	if len(rows) > 0 {
		cfg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}
	_, err := call(ctx, c, func(bot *tgbotapi.BotAPI) (tgbotapi.Message, error) { return bot.Send(cfg) })
	return err
}

// CopyMessage implements dispatch.Messenger.
func (c *Client) CopyMessage(ctx context.Context, chatID int64, from library.MessageRef) (int, error) {
	cfg := tgbotapi.NewCopyMessage(chatID, from.ChatID, from.MessageID)
	id, err := call(ctx, c, func(bot *tgbotapi.BotAPI) (tgbotapi.MessageID, error) { return bot.CopyMessage(cfg) })
	if err != nil {
		return 0, err
	}
	return id.MessageID, nil
}

// AnswerCallback implements dispatch.Messenger.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	cfg := tgbotapi.NewCallback(callbackID, text)
	_, err := call(ctx, c, func(bot *tgbotapi.BotAPI) (*tgbotapi.APIResponse, error) { return bot.Request(cfg) })
	return err
}

// ctxClient binds every request it sends to ctx.
type ctxClient struct {
	ctx  context.Context
	base tgbotapi.HTTPClient
}

func (c ctxClient) Do(req *http.Request) (*http.Response, error) {
	return c.base.Do(req.WithContext(c.ctx))
}

// call runs fn against a copy of the bot whose HTTP requests carry ctx, so a
// cancelled or expired ctx aborts the request itself. fn returns only once
// the request has finished.
func call[T any](ctx context.Context, c *Client, fn func(bot *tgbotapi.BotAPI) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	bot := *c.bot
	bot.Client = ctxClient{ctx: ctx, base: c.bot.Client}
	v, err := fn(&bot)
	if err != nil {
		return zero, convertError(err)
	}
	return v, nil
}

// convertError maps Bot API errors to forward.ProviderError.
func convertError(err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return &forward.ProviderError{
			Code:        apiErr.Code,
			Description: apiErr.Message,
			RetryAfter:  time.Duration(apiErr.RetryAfter) * time.Second,
		}
	}
	return err
}

var (
	_ forward.Transport  = (*Client)(nil)
	_ dispatch.Messenger = (*Client)(nil)
)
