package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/holidaze/internal/app"
	"github.com/example/holidaze/internal/config"
	"github.com/example/holidaze/internal/web"
	"github.com/spf13/cobra"
)

func newServerCmd(f *rootFlags) *cobra.Command {
	var (
		migrateUp     bool
		sweepEvery    time.Duration
		sessionMaxAge time.Duration
	)

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(f.envFile)
			if err != nil {
				return err
			}
			if err := cfg.RequireCookieKeys(); err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := app.New(ctx, cfg, app.Options{Migrate: migrateUp, LogWriter: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.Close()

			// background maintenance
			go func() { _ = a.Maintenance(sweepEvery, sessionMaxAge).Run(ctx) }()

			ws := &web.Server{
				Auth:     a.Auth,
				Discover: a.Discover,
				Book:     a.Book,
				Bookings: a.Bookings,
				Venues:   a.Venues,
				Sessions: web.NewSessionManager(cfg.CookieHashKey, cfg.CookieBlockKey),
				Registry: a.Registry,
				Log:      a.Log,
				BaseURL:  cfg.BaseURL,
			}
			h, err := ws.Routes()
			if err != nil {
				return err
			}
			return web.Start(ctx, cfg.ListenAddr, h, a.Log)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")
	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	cmd.Flags().DurationVar(&sweepEvery, "maintenance-interval", 5*time.Minute, "how often to warm the venue cache and expire old sessions")
	cmd.Flags().DurationVar(&sessionMaxAge, "session-max-age", 30*24*time.Hour, "client state untouched for longer is deleted")
	return cmd
}
