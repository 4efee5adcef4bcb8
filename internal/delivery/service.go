// Package delivery produces fully rendered copies of the flashcard dataset.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/p-n-ai/pai-flashcards/internal/flashcard"
	"github.com/p-n-ai/pai-flashcards/internal/mathmarkup"
)

const defaultWorkers = 4

// ErrSourceUnavailable is returned when the dataset cannot be loaded.
var ErrSourceUnavailable = errors.New("flashcard source unavailable")

var tracer = otel.Tracer("github.com/p-n-ai/pai-flashcards/internal/delivery")

// Config holds dependencies for the delivery service.
type Config struct {
	Source   flashcard.Source
	Rewriter *mathmarkup.Rewriter
	Workers  int // topics rendered concurrently (default 4)
}

// Service loads the dataset and renders every question and answer.
type Service struct {
	source   flashcard.Source
	rewriter *mathmarkup.Rewriter
	workers  int
}

// NewService creates a delivery service.
func NewService(cfg Config) *Service {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Service{
		source:   cfg.Source,
		rewriter: cfg.Rewriter,
		workers:  workers,
	}
}

// Deliver returns a rendered copy of the dataset. The loaded dataset is never
// modified; rendered text is written into a new value.
func (s *Service) Deliver(ctx context.Context) (*flashcard.Dataset, error) {
	ctx, span := tracer.Start(ctx, "delivery.Deliver")
	defer span.End()

	start := time.Now()
	raw, err := s.load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return nil, err
	}

	out := &flashcard.Dataset{Topics: make([]flashcard.Topic, len(raw.Topics))}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range raw.Topics {
		g.Go(func() error {
			out.Topics[i] = s.renderTopic(gctx, raw.Topics[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cards := out.CardCount()
	span.SetAttributes(
		attribute.Int("flashcards.topics", len(out.Topics)),
		attribute.Int("flashcards.cards", cards),
	)
	slog.Info("flashcards delivered with rendered math",
		"topics", len(out.Topics),
		"cards", cards,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// Stream loads the dataset once and calls fn with each rendered topic in
// dataset order. It stops at the first error returned by fn.
func (s *Service) Stream(ctx context.Context, fn func(flashcard.Topic) error) (int, error) {
	raw, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	for i, t := range raw.Topics {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := fn(s.renderTopic(ctx, t)); err != nil {
			return i, fmt.Errorf("stream topic %s: %w", t.ID, err)
		}
	}

	slog.Info("flashcards streamed with rendered math", "topics", len(raw.Topics))
	return len(raw.Topics), nil
}

func (s *Service) load(ctx context.Context) (*flashcard.Dataset, error) {
	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	if ds == nil {
		return &flashcard.Dataset{}, nil
	}
	return ds, nil
}

func (s *Service) renderTopic(ctx context.Context, t flashcard.Topic) flashcard.Topic {
	out := flashcard.Topic{
		ID:    t.ID,
		Name:  t.Name,
		Cards: make([]flashcard.Card, len(t.Cards)),
	}
	for i, c := range t.Cards {
		out.Cards[i] = flashcard.Card{
			Q: s.rewriter.Rewrite(ctx, c.Q),
			A: s.rewriter.Rewrite(ctx, c.A),
		}
	}
	return out
}
