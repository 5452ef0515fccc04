package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/punchctl/internal/api"
	"github.com/roach88/punchctl/internal/config"
	"github.com/roach88/punchctl/internal/gateway"
	"github.com/roach88/punchctl/internal/logger"
	"github.com/roach88/punchctl/internal/punch"
	"github.com/roach88/punchctl/internal/reconcile"
	"github.com/roach88/punchctl/internal/route"
	"github.com/roach88/punchctl/internal/session"
)

// App is the client stack one command runs against.
type App struct {
	Config     *config.Config
	Log        *zap.Logger
	Session    *session.Store
	Nav        *route.Recorder
	Client     *api.Client
	Reconciler *reconcile.Reconciler
	Location   *time.Location
	Now        func() time.Time
}

func openApp(opts *RootOptions) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	log, err := logger.New(cfg.Env, opts.Verbose)
	if err != nil {
		return nil, fmt.Errorf("%w: logger: %w", ErrConfig, err)
	}

	if dir := filepath.Dir(cfg.SessionDB); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create session directory: %w", err)
		}
	}
	store, err := session.Open(cfg.SessionDB)
	if err != nil {
		return nil, err
	}

	mode := punch.Lenient
	if cfg.StrictDecode || cfg.Env == "development" {
		mode = punch.Strict
	}

	nav := &route.Recorder{}
	gw := gateway.New(gateway.Config{BaseURL: cfg.BaseURL, Timeout: cfg.Timeout}, store, nav, log)
	client := api.New(gw, store, api.WithDecodeMode(mode), api.WithLogger(log))

	now := opts.now
	if now == nil {
		now = time.Now
	}

	return &App{
		Config:     cfg,
		Log:        log,
		Session:    store,
		Nav:        nav,
		Client:     client,
		Reconciler: reconcile.New(store, client, log),
		Location:   loc,
		Now:        now,
	}, nil
}

// Close releases the session database.
func (a *App) Close() error {
	_ = a.Log.Sync()
	return a.Session.Close()
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// runWithApp opens the app for one command and reports any failure
// through the formatter.
func runWithApp(opts *RootOptions, cmd *cobra.Command, fn func(ctx context.Context, app *App, f *OutputFormatter) error) error {
	f := newFormatter(opts, cmd)

	app, err := openApp(opts)
	if err != nil {
		return f.Fail(err)
	}
	defer app.Close()

	f.VerboseLog("backend %s, session %s", app.Config.BaseURL, app.Config.SessionDB)

	if err := fn(cmd.Context(), app, f); err != nil {
		return f.Fail(err)
	}
	return nil
}

// requireCredential fails with ErrNotLoggedIn when the session holds no
// usable credential.
func requireCredential(ctx context.Context, app *App) error {
	ok, err := app.Session.HasCredential(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotLoggedIn
	}
	return nil
}

// guard runs the route guard. A redirect to login issued by the gateway
// while reconciling wins over the guard's own answer.
func guard(ctx context.Context, app *App, want route.Route) (route.Route, reconcile.State) {
	to, state := app.Reconciler.Guard(ctx, want)
	if hop, ok := app.Nav.Last(); ok && hop == route.Login {
		return route.Login, reconcile.State{Source: reconcile.SourceNone}
	}
	return to, state
}
