package flashcard_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/p-n-ai/pai-flashcards/internal/flashcard"
)

func TestNewPostgresSource_NilPool(t *testing.T) {
	if _, err := flashcard.NewPostgresSource(nil); err == nil {
		t.Fatal("NewPostgresSource(nil) should return error")
	}
}

func TestPostgresSource_Load(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("flashcards"),
		postgres.WithUsername("flash"),
		postgres.WithPassword("flash"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("pgxpool.New() error = %v", err)
	}
	defer pool.Close()

	src, err := flashcard.NewPostgresSource(pool)
	if err != nil {
		t.Fatalf("NewPostgresSource() error = %v", err)
	}
	if err := src.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO topics (id, name, position) VALUES ('calculus', 'Calculus', 2), ('algebra', 'Algebra', 1);
		INSERT INTO cards (topic_id, position, question, answer) VALUES
			('algebra', 1, 'Solve $x^2=9$', '$x=\pm3$'),
			('calculus', 1, '\(\frac{d}{dx}x^2\)', '$2x$');
	`)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	ds, err := src.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(ds.Topics) != 2 || ds.Topics[0].ID != "algebra" {
		t.Fatalf("topics = %+v", ds.Topics)
	}
	if got := ds.Topics[1].Cards[0].Q; got != `\(\frac{d}{dx}x^2\)` {
		t.Errorf("calculus Q = %q", got)
	}
	if err := src.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}
