// Package cli wires the koast SDK, the session store and logging into the
// koastctl command.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/yorch/koast/pkg/koast"
	"github.com/yorch/koast/pkg/sessionstore"
	"github.com/yorch/koast/pkg/slogx"
)

type App struct {
	cfg    Config
	log    *slog.Logger
	client *koast.Client
	store  *sessionstore.Store
}

func New(cfg Config) (*App, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("KOAST_BASE_URL is required")
	}

	log := slogx.New(slogx.Config{
		Service: "koastctl",
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	client := koast.NewClient(koast.Config{
		BaseURL:   cfg.BaseURL,
		APIPrefix: cfg.APIPrefix,
		Strategy:  koast.ParseStrategy(cfg.Strategy),
		SiteTitle: cfg.SiteTitle,
		ReturnURL: cfg.ReturnURL,
		Logger:    log,
		Limiter:   koast.DefaultLimit.NewLimiter(),
	})

	for handle, template := range cfg.Endpoints {
		if err := client.AddEndpoint(handle, template); err != nil {
			return nil, err
		}
	}

	store, err := sessionstore.NewStore(cfg.SessionFile, []byte(cfg.SessionKey))
	if err != nil {
		return nil, err
	}
	if err := store.ApplyMigrations(); err != nil {
		_ = store.Close()
		return nil, err
	}

	return &App{cfg: cfg, log: log, client: client, store: store}, nil
}

func (a *App) Close() error {
	return a.store.Close()
}

// Run dispatches one subcommand. Any persisted session is restored first so
// auth headers are in place for the command itself.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: koastctl <status|login|logout|get|query|create|signin> [args]")
	}

	a.restoreSession(ctx)

	switch args[0] {
	case "status":
		return a.runStatus(ctx)
	case "login":
		return a.runLogin(ctx, args[1:])
	case "logout":
		return a.runLogout(ctx, args[1:])
	case "get":
		return a.runGet(ctx, args[1:])
	case "query":
		return a.runQuery(ctx, args[1:])
	case "create":
		return a.runCreate(ctx, args[1:])
	case "signin":
		return a.runSignIn(args[1:])
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func (a *App) restoreSession(ctx context.Context) {
	snap, err := a.store.Load(ctx, a.cfg.SessionName)
	if errors.Is(err, sessionstore.ErrNotFound) {
		return
	}
	if err != nil {
		a.log.Warn("could not restore session", "error", err)
		return
	}
	a.client.User().Restore(snap.Authenticated, snap.Data, snap.Meta)
}

func (a *App) persistSession(ctx context.Context) {
	user := a.client.User()
	err := a.store.Save(ctx, a.cfg.SessionName, sessionstore.Snapshot{
		Authenticated: user.IsAuthenticated(),
		Data:          user.Data(),
		Meta:          user.Meta(),
		SavedAt:       time.Now().UTC(),
	})
	if err != nil {
		a.log.Warn("could not persist session", "error", err)
	}
}

func (a *App) runStatus(ctx context.Context) error {
	authenticated, err := a.client.User().RequestStatus(ctx)
	if err != nil {
		return err
	}

	a.persistSession(ctx)
	return printJSON(map[string]any{
		"isAuthenticated": authenticated,
		"data":            a.client.User().Data(),
	})
}

func (a *App) runLogin(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: koastctl login <username> <password>")
	}

	authenticated, err := a.client.User().LoginLocal(ctx, koast.Credentials{
		Username: args[0],
		Password: args[1],
	})
	if err != nil {
		return err
	}
	if !authenticated {
		return errors.New("login rejected")
	}

	a.persistSession(ctx)
	a.log.Info("logged in", "username", args[0])
	return nil
}

func (a *App) runLogout(ctx context.Context, args []string) error {
	nextURL := ""
	if len(args) > 0 {
		nextURL = args[0]
	}

	if err := a.client.User().Logout(ctx, nextURL); err != nil {
		return err
	}

	if err := a.store.Clear(ctx, a.cfg.SessionName); err != nil {
		a.log.Warn("could not clear persisted session", "error", err)
	}
	a.log.Info("logged out")
	return nil
}

func (a *App) runGet(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: koastctl get <handle> <id>")
	}

	resource, err := a.client.GetResource(ctx, args[0], koast.Params{"id": args[1]})
	if err != nil {
		return err
	}
	if resource == nil {
		return fmt.Errorf("%s %s: not found", args[0], args[1])
	}
	return printJSON(map[string]any{
		"fields": resource.Fields,
		"can":    resource.Can(),
	})
}

func (a *App) runQuery(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: koastctl query <handle> [key=value ...]")
	}

	query := url.Values{}
	for _, pair := range args[1:] {
		if key, value, ok := strings.Cut(pair, "="); ok {
			query.Add(key, value)
		}
	}

	resources, err := a.client.QueryResources(ctx, args[0], query)
	if err != nil {
		return err
	}

	rows := make([]map[string]any, 0, len(resources))
	for _, resource := range resources {
		rows = append(rows, resource.Fields)
	}
	return printJSON(rows)
}

func (a *App) runCreate(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: koastctl create <handle> <json>")
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(args[1]), &body); err != nil {
		return fmt.Errorf("invalid body: %w", err)
	}

	result, err := a.client.CreateResource(ctx, args[0], body)
	if err != nil {
		return err
	}

	_, err = os.Stdout.Write(append(result, '\n'))
	return err
}

func (a *App) runSignIn(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: koastctl signin <provider>")
	}

	// The rest of the flow happens in the browser; a later `koastctl status`
	// picks up the resulting session.
	return a.client.User().InitiateAuthentication(args[0])
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
