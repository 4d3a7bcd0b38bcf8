// Package app wires configuration, adapters and use cases into one object
// shared by the web server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/example/holidaze/internal/application/usecases"
	"github.com/example/holidaze/internal/cache"
	"github.com/example/holidaze/internal/config"
	"github.com/example/holidaze/internal/db"
	"github.com/example/holidaze/internal/discovery"
	"github.com/example/holidaze/internal/domain/venue"
	"github.com/example/holidaze/internal/holidaze"
	"github.com/example/holidaze/internal/infrastructure/crypto"
	"github.com/example/holidaze/internal/infrastructure/postgres"
	"github.com/example/holidaze/internal/logging"
	"github.com/example/holidaze/internal/migrate"
	"github.com/example/holidaze/internal/notify"
	"github.com/example/holidaze/internal/scheduler"
	"github.com/example/holidaze/internal/state"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type Options struct {
	// Store replaces the configured state store; the CLI passes its file store.
	Store state.Store
	// Migrate applies pending migrations when a database is configured.
	Migrate bool
	// Logger is used as-is when set; otherwise one is built from config.
	Logger    *slog.Logger
	LogWriter io.Writer
}

// App is the explicit application state: everything a request or command
// needs, built once at start-up.
type App struct {
	Config   config.Config
	Log      *slog.Logger
	Client   *holidaze.Client
	Store    state.Store
	Cache    cache.Cache
	Hub      *notify.Hub
	Venues   *discovery.Repository
	Registry *prometheus.Registry

	Auth     usecases.Auth
	Discover usecases.Discover
	Book     usecases.SubmitBooking
	Admin    usecases.VenueAdmin
	Bookings usecases.MyBookings

	sessions *postgres.StateStore
	closers  []func() error
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	a := &App{Config: cfg, Registry: prometheus.NewRegistry()}

	a.Log = opts.Logger
	if a.Log == nil {
		log, closeLog, err := logging.New(logging.Options{
			Writer:     opts.LogWriter,
			Level:      logging.ParseLevel(cfg.LogLevel),
			Format:     cfg.LogFormat,
			FluentHost: cfg.FluentHost,
			FluentPort: cfg.FluentPort,
			TagPrefix:  "holidaze",
		})
		if err != nil {
			return nil, err
		}
		a.Log = log
		a.closers = append(a.closers, closeLog)
	}

	if err := a.initMetrics(); err != nil {
		return nil, a.fail(err)
	}

	a.Client = holidaze.New(holidaze.Options{
		BaseURL:       cfg.APIURL,
		APIKey:        cfg.APIKey,
		Timeout:       cfg.APITimeout,
		RatePerSecond: cfg.RatePerSecond,
		Burst:         cfg.RateBurst,
		Logger:        a.Log,
	})

	if err := a.initStore(ctx, opts); err != nil {
		return nil, a.fail(err)
	}
	if err := a.initCache(ctx); err != nil {
		return nil, a.fail(err)
	}

	a.Venues = discovery.NewRepository(a.Client, a.Cache, cfg.CacheTTL, a.Log)
	a.Hub = notify.NewHub(a.Log)
	a.Hub.Subscribe(a.Venues)
	if err := a.initEvents(); err != nil {
		return nil, a.fail(err)
	}

	a.Auth = usecases.Auth{API: a.Client, Store: a.Store}
	a.Discover = usecases.Discover{Repo: a.Venues, PageSize: cfg.PageLimit}
	a.Book = usecases.SubmitBooking{API: a.Client, Publisher: a.Hub}
	a.Admin = usecases.VenueAdmin{API: a.Client, Cache: a.Venues}
	a.Bookings = usecases.MyBookings{API: a.Client}
	return a, nil
}

func (a *App) initMetrics() error {
	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := a.Registry.Register(c); err != nil {
			return err
		}
	}
	return holidaze.RegisterMetrics(a.Registry)
}

func (a *App) initStore(ctx context.Context, opts Options) error {
	var st state.Store
	switch {
	case opts.Store != nil:
		st = opts.Store
	case a.Config.DatabaseURL != "":
		d, err := db.Open(ctx, a.Config.DatabaseURL)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() error { d.Close(); return nil })
		if err := d.Ping(ctx); err != nil {
			return fmt.Errorf("db ping: %w", err)
		}
		if opts.Migrate {
			if err := migrate.Up(ctx, d, a.Log); err != nil {
				return err
			}
		}
		a.sessions = postgres.NewStateStore(d)
		st = a.sessions
	default:
		a.Log.Info("no DATABASE_URL, client state is kept in memory")
		st = state.NewMemoryStore()
	}

	if a.Config.StateEncKey != nil {
		sealer, err := crypto.New(a.Config.StateEncKey)
		if err != nil {
			return fmt.Errorf("state key: %w", err)
		}
		st = state.Sealed{Store: st, Sealer: sealer}
	}
	a.Store = st
	return nil
}

func (a *App) initCache(ctx context.Context) error {
	if a.Config.CacheTTL <= 0 {
		a.Cache = cache.Nop{}
		return nil
	}
	if a.Config.RedisAddr == "" {
		a.Cache = cache.NewMemory()
		return nil
	}
	r, err := cache.NewRedis(ctx, cache.RedisOptions{
		Addr:     a.Config.RedisAddr,
		Password: a.Config.RedisPassword,
		DB:       a.Config.RedisDB,
	})
	if err != nil {
		return err
	}
	a.closers = append(a.closers, r.Close)
	a.Cache = r
	return nil
}

func (a *App) initEvents() error {
	if a.Config.AMQPURL == "" {
		return nil
	}
	pub, err := notify.DialAMQP(a.Config.AMQPURL, a.Config.AMQPExchange)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, pub.Close)
	a.Hub.Subscribe(pub)
	a.Log.Info("publishing booking events", "exchange", a.Config.AMQPExchange)
	return nil
}

// Maintenance returns the periodic tasks the server runs in the background.
func (a *App) Maintenance(every, sessionMaxAge time.Duration) *scheduler.Scheduler {
	tasks := []scheduler.Task{{
		Name: "warm-venues",
		Run: func(ctx context.Context) error {
			_, err := a.Venues.Fetch(ctx, venue.ListQuery{Limit: a.Config.PageLimit, WithBookings: true}.Normalize())
			return err
		},
	}}
	if a.sessions != nil {
		tasks = append(tasks, scheduler.Task{
			Name: "expire-sessions",
			Run: func(ctx context.Context) error {
				n, err := a.sessions.Expire(ctx, sessionMaxAge)
				if err == nil && n > 0 {
					a.Log.Info("expired client state", "rows", n)
				}
				return err
			},
		})
	}
	return &scheduler.Scheduler{Tasks: tasks, Interval: every, Log: a.Log.With("component", "scheduler")}
}

func (a *App) fail(err error) error {
	return errors.Join(err, a.Close())
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
