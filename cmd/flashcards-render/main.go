// Command flashcards-render renders the configured dataset once and writes the
// same JSON payload the server returns, for static hosting.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/natefinch/atomic"

	"github.com/p-n-ai/pai-flashcards/internal/app"
	"github.com/p-n-ai/pai-flashcards/internal/flashcard"
	"github.com/p-n-ai/pai-flashcards/internal/platform/config"
	"github.com/p-n-ai/pai-flashcards/internal/platform/logging"
)

type deliverer interface {
	Deliver(ctx context.Context) (*flashcard.Dataset, error)
}

func main() {
	out := flag.String("o", "", "output file (default stdout)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	// Logs go to stderr so stdout carries only the payload.
	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)
	if err != nil {
		slog.Warn("falling back to info logging", "error", err)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("setup failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := export(ctx, a.Service, *out, os.Stdout); err != nil {
		slog.Error("export failed", "error", err)
		a.Close()
		os.Exit(1)
	}
}

// export writes the rendered dataset to path, replacing it atomically, or to
// stdout when path is empty.
func export(ctx context.Context, svc deliverer, path string, stdout io.Writer) error {
	ds, err := svc.Deliver(ctx)
	if err != nil {
		return err
	}

	body, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	body = append(body, '\n')

	if path == "" {
		_, err := stdout.Write(body)
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(body)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	slog.Info("rendered dataset written", "path", path, "topics", len(ds.Topics), "cards", ds.CardCount())
	return nil
}
