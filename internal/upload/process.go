package upload

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/vmunix/reelvault/internal/events"
	"github.com/vmunix/reelvault/internal/forward"
	"github.com/vmunix/reelvault/internal/library"
)

// job is a dequeued artifact ready to forward.
type job struct {
	kind    library.Kind
	id      string
	fileRef string
	channel int64
	caption string
}

// process runs one forwarding attempt for id. Failures are recorded on the
// entity and never returned.
func (q *Queue) process(ctx context.Context, id string) {
	attemptID := uuid.NewString()
	log := q.log.With("content_id", id, "attempt_id", attemptID)

	j, err := q.prepare(id)
	if err != nil {
		log.Error("cannot forward", "error", err)
		if j.kind != "" && !errors.Is(err, library.ErrNotFound) {
			q.fail(ctx, j, attemptID, 0, err)
		}
		return
	}

	if err := q.store.TransitionUpload(j.kind, id, library.UploadUpdate{Status: library.UploadProcessing}); err != nil {
		// Completed, cancelled or already processing: nothing to forward.
		log.Warn("skipping upload", "error", err)
		return
	}
	q.publish(ctx, &events.UploadStarted{
		BaseEvent: events.NewBaseEvent(events.EventUploadStarted, string(j.kind), id),
		ContentID: id,
		AttemptID: attemptID,
	})
	log.Info("forwarding", "kind", j.kind, "channel", j.channel)

	ref, tries, err := q.forwardWithRetry(ctx, j)
	if err != nil {
		log.Error("forward failed", "tries", tries, "error", err)
		q.fail(ctx, j, attemptID, tries, err)
		return
	}

	update := library.UploadUpdate{Status: library.UploadCompleted, Stored: &ref}
	if j.kind == library.KindEpisode {
		update.ShareLink = ShareLink(q.config.LinkBase, ref.ChatID, ref.MessageID)
	}
	if err := q.store.TransitionUpload(j.kind, id, update); err != nil {
		log.Error("failed to record completed upload", "error", err)
		return
	}

	log.Info("forwarded", "message_id", ref.MessageID, "tries", tries)
	q.publish(ctx, &events.UploadCompleted{
		BaseEvent: events.NewBaseEvent(events.EventUploadCompleted, string(j.kind), id),
		ContentID: id,
		AttemptID: attemptID,
		ChatID:    ref.ChatID,
		MessageID: ref.MessageID,
		ShareLink: update.ShareLink,
		Tries:     tries,
	})
}

// prepare loads the entity behind id and works out where it goes. The
// returned job carries its kind even on error.
func (q *Queue) prepare(id string) (job, error) {
	j := job{kind: q.classify(id), id: id}

	switch j.kind {
	case library.KindMovie:
		m, err := q.store.GetMovie(id)
		if err != nil {
			return job{}, fmt.Errorf("load movie: %w", err)
		}
		j.fileRef = m.FileRef
		j.channel = q.config.Channels.Movies
		j.caption = forward.MovieCaption(m)

	case library.KindEpisode:
		e, err := q.store.GetEpisode(id)
		if err != nil {
			return job{}, fmt.Errorf("load episode: %w", err)
		}
		s, err := q.store.GetSeries(e.SeriesID)
		if err != nil {
			return job{}, fmt.Errorf("load series %q: %w", e.SeriesID, err)
		}
		j.fileRef = e.FileRef
		j.caption = forward.EpisodeCaption(s, e)
		switch s.Type {
		case library.SeriesTypeAnime:
			j.channel = q.config.Channels.Anime
		default:
			j.channel = q.config.Channels.Webseries
		}

	default:
		return job{}, fmt.Errorf("%s %q is not forwardable: %w", j.kind, id, library.ErrConstraint)
	}

	if j.channel == 0 {
		return j, fmt.Errorf("no storage channel configured for %s", j.kind)
	}
	return j, nil
}

// forwardWithRetry calls the forwarder under a per-call timeout, retrying
// transient failures with exponential backoff up to MaxAttempts calls.
func (q *Queue) forwardWithRetry(ctx context.Context, j job) (library.MessageRef, int, error) {
	var ref library.MessageRef
	tries := 0

	op := func() error {
		tries++
		callCtx := ctx
		if q.config.AttemptTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, q.config.AttemptTimeout)
			defer cancel()
		}

		r, err := q.forwarder.Forward(callCtx, j.fileRef, j.channel, j.caption)
		if err != nil {
			if ctx.Err() != nil || !forward.IsTransient(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		ref = r
		return nil
	}

	exp := backoff.NewExponentialBackOff()
	if q.config.RetryBackoff > 0 {
		exp.InitialInterval = q.config.RetryBackoff
	}
	exp.MaxElapsedTime = 0
	policy := &retryAfterBackOff{
		BackOff: backoff.WithMaxRetries(exp, uint64(q.config.MaxAttempts-1)),
	}

	notify := func(err error, d time.Duration) {
		policy.lastErr = err
		q.log.Warn("transient forward failure, retrying", "content_id", j.id, "try", tries, "delay", d, "error", err)
	}
	err := backoff.RetryNotify(op, backoff.WithContext(policy, ctx), notify)
	return ref, tries, err
}

// retryAfterBackOff stretches the next delay to honour a provider's
// retry-after hint.
type retryAfterBackOff struct {
	backoff.BackOff
	lastErr error
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	if next == backoff.Stop {
		return next
	}
	if hint := forward.RetryAfter(b.lastErr); hint > next {
		return hint
	}
	return next
}

func (q *Queue) fail(ctx context.Context, j job, attemptID string, tries int, cause error) {
	err := q.store.TransitionUpload(j.kind, j.id, library.UploadUpdate{Status: library.UploadFailed, Error: cause.Error()})
	if errors.Is(err, library.ErrInvalidTransition) && tries == 0 {
		// Never reached processing; route through it so the error is kept.
		if err = q.store.TransitionUpload(j.kind, j.id, library.UploadUpdate{Status: library.UploadProcessing}); err == nil {
			err = q.store.TransitionUpload(j.kind, j.id, library.UploadUpdate{Status: library.UploadFailed, Error: cause.Error()})
		}
	}
	if err != nil {
		q.log.Error("failed to record failed upload", "content_id", j.id, "error", err)
		return
	}
	q.publish(ctx, &events.UploadFailed{
		BaseEvent: events.NewBaseEvent(events.EventUploadFailed, string(j.kind), j.id),
		ContentID: j.id,
		AttemptID: attemptID,
		Reason:    cause.Error(),
		Tries:     tries,
	})
}
