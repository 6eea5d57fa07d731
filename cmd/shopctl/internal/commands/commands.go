package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/mhotoys/shopctl/internal/api"
	"github.com/mhotoys/shopctl/internal/config"
	"github.com/mhotoys/shopctl/internal/logger"
	"github.com/mhotoys/shopctl/internal/session"
	"github.com/rs/zerolog"
)

type Globals struct {
	Debug   bool
	Profile string
	Version string
}

// App wires the client stack for one command invocation: config, cookie
// jar, API client, stores, auth machine and guard. Restore is awaited
// here, so the first guard decision always sees a settled state.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Client  *api.Client
	Manager *session.Manager
	Guard   *session.Guard
}

// setup boots the client stack and restores the previous session. route
// is the navigation target of the running command; the login command
// passes session.LoginRoute so a rejected session does not trigger a
// redirect hint onto itself.
func setup(ctx context.Context, globals *Globals, route string) (*App, error) {
	log := logger.Setup(globals.Debug)

	cfg, err := config.Load(globals.Profile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	jar, err := api.NewPersistentJar(cfg.CookieJarPath())
	if err != nil {
		return nil, err
	}

	client, err := api.New(api.Config{
		BaseURL: cfg.APIURL,
		Timeout: cfg.Timeout,
		Jar:     jar,
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}

	snapshots := session.NewFileSnapshots(cfg.SnapshotPath())
	if err := session.MigrateLegacyState(snapshots, cfg.LegacyStatePath(), log); err != nil {
		log.Warn().Err(err).Msg("legacy state migration failed")
	}

	tokens := session.NewTokenStore(client, log)
	manager := session.NewManager(client, tokens, snapshots, log)
	manager.SetRoute(route)
	manager.SetLoginRedirect(func() {
		fmt.Println("Your session has expired. Run 'shopctl login' to sign in again.")
	})
	client.SetUnauthenticatedHook(manager.HandleUnauthenticated)

	manager.Restore(ctx)

	return &App{
		Config:  cfg,
		Logger:  log,
		Client:  client,
		Manager: manager,
		Guard:   session.NewGuard(manager),
	}, nil
}

// require runs the guard for the given target and converts any negative
// outcome into a command error. RedirectToLogin carries the requested
// target so the user knows where to return after signing in.
func (a *App) require(target string, req session.Requirement) error {
	outcome := a.Guard.Check(target, req)

	switch outcome.Decision {
	case session.DecisionAllowed:
		return nil
	case session.DecisionRedirectToLogin:
		return fmt.Errorf("not signed in\n\nRun 'shopctl login' first, then retry 'shopctl %s'", outcome.From)
	case session.DecisionAccessDenied:
		return errors.New("access denied: this command requires the administrator role")
	default:
		return errors.New("session state is not settled yet; try again")
	}
}
