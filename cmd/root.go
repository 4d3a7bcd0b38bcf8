package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/example/holidaze/internal/app"
	"github.com/example/holidaze/internal/config"
	"github.com/example/holidaze/internal/state"
	"github.com/spf13/cobra"
)

// Build metadata, set at link time:
//
//	go build -ldflags "-X github.com/example/holidaze/cmd.Version=v1.2.0 \
//	  -X github.com/example/holidaze/cmd.CommitSHA=$(git rev-parse --short HEAD) \
//	  -X github.com/example/holidaze/cmd.BuildDate=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/holidaze
var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

// cliSession is the state-store namespace used by every CLI invocation.
const cliSession = "cli"

type rootFlags struct {
	envFile   string
	stateFile string
}

func NewRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:           "holidaze",
		Short:         "Browse and book Holidaze venues from the terminal or a web UI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&f.envFile, "env-file", ".env", "optional dotenv file loaded before the environment")
	root.PersistentFlags().StringVar(&f.stateFile, "state-file", "", "CLI login state (default $STATE_FILE or the user config dir)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newKeysCmd())
	root.AddCommand(newServerCmd(f))
	root.AddCommand(newLoginCmd(f))
	root.AddCommand(newRegisterCmd(f))
	root.AddCommand(newLogoutCmd(f))
	root.AddCommand(newWhoamiCmd(f))
	root.AddCommand(newVenuesCmd(f))
	root.AddCommand(newBookCmd(f))
	root.AddCommand(newBookingsCmd(f))

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openApp builds the application for a CLI command. Client state goes to
// the local state file instead of the configured store.
func (f *rootFlags) openApp(ctx context.Context, cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load(f.envFile)
	if err != nil {
		return nil, err
	}
	path := f.stateFile
	if path == "" {
		path = cfg.StateFile
	}
	if path == "" {
		if path, err = state.DefaultPath(); err != nil {
			return nil, fmt.Errorf("state file: %w", err)
		}
	}
	return app.New(ctx, cfg, app.Options{
		Store:     state.NewFileStore(path),
		LogWriter: cmd.ErrOrStderr(),
	})
}

// session restores the CLI login, failing when nobody is logged in.
func session(ctx context.Context, a *app.App) (state.Session, error) {
	sess, err := a.Auth.Current(ctx, cliSession)
	if err != nil {
		return sess, err
	}
	if !sess.LoggedIn() {
		return sess, fmt.Errorf("not logged in; run `holidaze login` first")
	}
	return sess, nil
}
