// Package forward sends previously received files into storage channels.
package forward

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vmunix/reelvault/internal/library"
)

//go:generate mockgen -destination=mocks/mock_transport.go -package=mocks . Transport

// Transport is the subset of the messaging provider used for forwarding.
type Transport interface {
	// SendDocument posts fileRef to chatID as a document and returns the new message id.
	SendDocument(ctx context.Context, chatID int64, fileRef, caption string) (int, error)
	// SendVideo posts fileRef to chatID as a video and returns the new message id.
	SendVideo(ctx context.Context, chatID int64, fileRef, caption string, streaming bool) (int, error)
}

// Forwarder places a file reference into a target channel.
type Forwarder struct {
	transport Transport
	log       *slog.Logger
}

// New creates a forwarder.
func New(transport Transport, log *slog.Logger) *Forwarder {
	if log == nil {
		log = slog.Default()
	}
	return &Forwarder{transport: transport, log: log}
}

// Forward sends fileRef to channel as a document. If the provider rejects the
// document because of a file type mismatch it retries once as a streamable
// video. Any other error is returned unchanged. The caption is truncated to
// MaxCaptionLen.
func (f *Forwarder) Forward(ctx context.Context, fileRef string, channel int64, caption string) (library.MessageRef, error) {
	caption = Truncate(caption, MaxCaptionLen)

	msgID, err := f.transport.SendDocument(ctx, channel, fileRef, caption)
	if err == nil {
		return library.MessageRef{ChatID: channel, MessageID: msgID}, nil
	}
	if !IsFileTypeMismatch(err) {
		return library.MessageRef{}, err
	}

	f.log.Debug("document rejected, retrying as video", "channel", channel, "error", err)
	msgID, err = f.transport.SendVideo(ctx, channel, fileRef, caption, true)
	if err != nil {
		return library.MessageRef{}, fmt.Errorf("send as video: %w", err)
	}
	return library.MessageRef{ChatID: channel, MessageID: msgID}, nil
}
