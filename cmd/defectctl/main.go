// defectctl is a terminal client for the defect-tracker backend: it drives
// the session lifecycle (login/logout/restore) and the per-resource API
// through the SDK packages.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/defectflow/defectflow-go/internal/config"
	"github.com/defectflow/defectflow-go/pkg/client"
	"github.com/defectflow/defectflow-go/pkg/logger"
	"github.com/defectflow/defectflow-go/pkg/session"
)

// App bundles the wired SDK for command handlers.
type App struct {
	API     *client.Client
	Session *session.Store
}

func main() {
	ctx := context.Background()

	app, err := buildApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	registry := NewRegistry()
	registerCommands(registry)

	if err := registry.Execute(ctx, app, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func buildApp(ctx context.Context) (*App, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	var tokens session.TokenStore
	if cfg.Redis.Addr != "" {
		rdb, err := session.ConnectRedis(ctx, session.RedisConfig{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		tokens = session.NewRedisStore(rdb)
	} else {
		tokens, err = session.NewFileStore(cfg.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("token store: %w", err)
		}
	}

	api := client.New(client.Options{
		BaseURL:    cfg.BaseURL,
		Version:    cfg.APIVersion,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		Logger:     logger.Component("client"),
	})
	store := session.NewStore(api, tokens, logger.Component("session"))
	api.SetTokenSource(store)

	return &App{API: api, Session: store}, nil
}

// requireSession restores the persisted session and fails when it comes up
// unauthenticated.
func requireSession(ctx context.Context, app *App) error {
	if err := app.Session.Restore(ctx); err != nil {
		return err
	}
	if app.Session.State() != session.StateAuthenticated {
		return fmt.Errorf("not logged in (run: defectctl login)")
	}
	return nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
