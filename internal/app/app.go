// Package app wires configuration into a ready delivery service. It is shared
// by the HTTP server and the offline export command.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/p-n-ai/pai-flashcards/internal/delivery"
	"github.com/p-n-ai/pai-flashcards/internal/flashcard"
	"github.com/p-n-ai/pai-flashcards/internal/httpapi"
	"github.com/p-n-ai/pai-flashcards/internal/mathmarkup"
	"github.com/p-n-ai/pai-flashcards/internal/platform/cache"
	"github.com/p-n-ai/pai-flashcards/internal/platform/config"
	"github.com/p-n-ai/pai-flashcards/internal/platform/database"
	"github.com/p-n-ai/pai-flashcards/internal/platform/sqlitedb"
	"github.com/p-n-ai/pai-flashcards/internal/render"
)

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// App holds the wired service and the resources it owns.
type App struct {
	Service *delivery.Service
	Checks  []httpapi.Check

	closers []func()
}

// New builds the dataset source, the render stack and the delivery service.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	src, err := a.buildSource(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	if hc, ok := src.(healthChecker); ok {
		a.Checks = append(a.Checks, httpapi.Check{Name: "source", Fn: hc.HealthCheck})
	}

	renderer, err := a.buildRenderer(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Service = delivery.NewService(delivery.Config{
		Source:   src,
		Rewriter: mathmarkup.NewRewriter(renderer),
		Workers:  cfg.Render.Workers,
	})
	return a, nil
}

// Close releases database and cache connections in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) buildSource(ctx context.Context, cfg *config.Config) (flashcard.Source, error) {
	switch cfg.Dataset.Source {
	case config.SourceFile:
		return flashcard.NewFileSource(cfg.Dataset.Path)
	case config.SourceDir:
		return flashcard.NewDirSource(cfg.Dataset.Path), nil
	case config.SourceXLSX:
		return flashcard.NewXLSXSource(cfg.Dataset.Path), nil
	case config.SourcePostgres:
		db, err := database.New(ctx, cfg.Database.URL, database.Options{
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		src, err := flashcard.NewPostgresSource(db.Pool)
		if err != nil {
			return nil, err
		}
		if err := src.Migrate(ctx); err != nil {
			return nil, err
		}
		return src, nil
	case config.SourceSQLite:
		db, err := sqlitedb.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		src, err := flashcard.NewSQLiteSource(db)
		if err != nil {
			return nil, err
		}
		if err := src.Migrate(ctx); err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown dataset source %q", cfg.Dataset.Source)
	}
}

// buildRenderer assembles memo -> redis (optional) -> backend chain.
func (a *App) buildRenderer(ctx context.Context, cfg *config.Config) (render.Renderer, error) {
	chain := render.NewChain()
	for _, name := range cfg.Render.Backends {
		switch name {
		case config.BackendKatexCLI:
			chain.Register(name, render.NewKatexCLI(cfg.Render.KatexPath,
				render.WithKatexTimeout(cfg.Render.Timeout)))
		case config.BackendHTTP:
			client := &http.Client{
				Timeout:   cfg.Render.Timeout,
				Transport: otelhttp.NewTransport(http.DefaultTransport),
			}
			chain.Register(name, render.NewHTTPRenderer(cfg.Render.ServiceURL,
				render.WithHTTPClient(client)))
		default:
			return nil, fmt.Errorf("unknown render backend %q", name)
		}
	}
	if !chain.HasBackend() {
		return nil, errors.New("no render backends configured")
	}
	if err := chain.HealthCheck(ctx); err != nil {
		slog.Warn("no render backend is healthy; math will be served as source text", "error", err)
	}

	var r render.Renderer = chain
	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cfg.Cache.URL, cache.Options{})
		if err != nil {
			slog.Warn("render cache unavailable, continuing without it", "error", err)
		} else {
			a.closers = append(a.closers, func() { _ = c.Close() })
			a.Checks = append(a.Checks, httpapi.Check{Name: "cache", Fn: c.HealthCheck})
			r = render.NewRedisCache(r, c.Client, cfg.Cache.TTL)
		}
	}

	return render.NewMemo(r, cfg.Render.MemoSize), nil
}
