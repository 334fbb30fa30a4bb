// Package server wires the daemon components together and runs them.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	v1 "github.com/vmunix/reelvault/internal/api/v1"
	"github.com/vmunix/reelvault/internal/config"
	"github.com/vmunix/reelvault/internal/dispatch"
	"github.com/vmunix/reelvault/internal/events"
	"github.com/vmunix/reelvault/internal/forward"
	"github.com/vmunix/reelvault/internal/handlers"
	"github.com/vmunix/reelvault/internal/library"
	"github.com/vmunix/reelvault/internal/migrations"
	"github.com/vmunix/reelvault/internal/resolve"
	"github.com/vmunix/reelvault/internal/telegram"
	"github.com/vmunix/reelvault/internal/upload"
)

// ErrAlreadyRunning is returned when another daemon holds the instance lock.
var ErrAlreadyRunning = errors.New("another reelvaultd instance is already running")

const shutdownTimeout = 30 * time.Second

// Options override parts of the runtime, mostly for tests.
type Options struct {
	// Listener replaces the listener built from server.host and server.port.
	Listener net.Listener
	// HTTPClient is used for Bot API requests.
	HTTPClient *http.Client
}

// Runner manages the daemon components.
type Runner struct {
	cfg    *config.Config
	opts   Options
	logger *slog.Logger
}

// NewRunner creates a new runner.
func NewRunner(cfg *config.Config, opts Options, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, opts: opts, logger: logger}
}

// LockPath returns the instance lock file used for a database path.
func LockPath(dbPath string) string {
	return dbPath + ".lock"
}

// OpenDB opens the sqlite database at path and applies the schema.
func OpenDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(migrations.InitialSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Run starts every component and blocks until ctx is cancelled or one of
// them fails.
func (r *Runner) Run(ctx context.Context) error {
	cfg := r.cfg

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	lock := flock.New(LockPath(cfg.Database.Path))
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	defer func() { _ = lock.Unlock() }()

	db, err := OpenDB(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	// === Stores and events ===
	store := library.NewStore(db)
	eventLog := events.NewEventLog(db)
	bus := events.NewBus(eventLog, r.component("bus"))
	defer func() { _ = bus.Close() }()

	// === Messaging provider ===
	httpClient := r.opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout(cfg)}
	}
	bot, err := telegram.New(cfg.Telegram.Token, telegram.Options{
		Endpoint:   cfg.Telegram.Endpoint,
		HTTPClient: httpClient,
		Logger:     r.component("telegram"),
	})
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}

	// === Upload pipeline ===
	queue := upload.New(store, forward.New(bot, r.component("forward")), bus, upload.Config{
		Channels: upload.Channels{
			Movies:    cfg.Storage.Movies,
			Webseries: cfg.Storage.Webseries,
			Anime:     cfg.Storage.Anime,
		},
		LinkBase:       cfg.Storage.LinkBase,
		IdleDelay:      cfg.Upload.IdleDelay,
		SettleDelay:    cfg.Upload.SettleDelay,
		AttemptTimeout: cfg.Upload.AttemptTimeout,
		MaxAttempts:    cfg.Upload.MaxAttempts,
		RetryBackoff:   cfg.Upload.RetryBackoff,
	}, r.component("upload"))
	if err := queue.Reconcile(ctx); err != nil {
		return fmt.Errorf("reconcile uploads: %w", err)
	}

	cleanup := handlers.NewCleanupHandler(bus, store, queue, eventLog, handlers.CleanupConfig{
		Interval:           cfg.Upload.SweepInterval,
		PendingTimeout:     cfg.Upload.PendingTimeout,
		CancelledRetention: cfg.Upload.CancelledRetention,
		EventRetention:     cfg.Upload.EventRetention,
	}, r.component("cleanup"))

	// === Delivery ===
	var cache resolve.Cache
	if cfg.Cache.RedisURL != "" {
		rc, err := resolve.NewRedisCache(ctx, cfg.Cache.RedisURL, cfg.Cache.TTL)
		if err != nil {
			r.logger.Warn("redis unavailable, resolving without cache", "error", err)
		} else {
			defer func() { _ = rc.Close() }()
			cache = rc
		}
	}
	resolver := resolve.New(store, cache, r.component("resolve"))
	dispatcher := dispatch.New(bot, resolver, store, bus, r.component("dispatch"))
	poller := telegram.NewPoller(bot, dispatcher, cfg.Telegram.PollTimeout, r.component("poller"))

	// === HTTP ===
	api, err := v1.New(v1.ServerDeps{
		Library:  store,
		Queue:    queue,
		Resolver: resolver,
		EventLog: eventLog,
		Bus:      bus,
	}, r.component("api"))
	if err != nil {
		return err
	}
	ln := r.opts.Listener
	if ln == nil {
		ln, err = net.Listen("tcp", net.JoinHostPort(cfg.Server.Host, fmt.Sprint(cfg.Server.Port)))
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}
	srv := &http.Server{Handler: api.Routes(), ReadHeaderTimeout: 10 * time.Second}

	r.logger.Info("server starting",
		"addr", ln.Addr().String(),
		"database", cfg.Database.Path,
		"bot", bot.Username(),
		"redis", cache != nil,
		"log_level", cfg.Server.LogLevel,
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, h := range []handlers.Handler{queue, cleanup} {
		g.Go(func() error {
			r.logger.Debug("handler starting", "handler", h.Name())
			return h.Start(ctx)
		})
	}
	g.Go(func() error { return resolver.Watch(ctx, bus) })
	g.Go(func() error { return poller.Run(ctx) })
	g.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	dispatcher.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	r.logger.Info("server stopped")
	return nil
}

// requestTimeout bounds every Bot API request. Uploads are cancelled at the
// attempt timeout through their context; long polls need the poll timeout
// plus some slack.
func requestTimeout(cfg *config.Config) time.Duration {
	poll := cfg.Telegram.PollTimeout + 10*time.Second
	if cfg.Upload.AttemptTimeout > poll {
		return cfg.Upload.AttemptTimeout
	}
	return poll
}

func (r *Runner) component(name string) *slog.Logger {
	return r.logger.With("component", name)
}
