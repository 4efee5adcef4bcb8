package flashcard

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresSchema creates the tables read by PostgresSource.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS topics (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	position INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS cards (
	id       BIGSERIAL PRIMARY KEY,
	topic_id TEXT NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
	position INTEGER NOT NULL DEFAULT 0,
	question TEXT NOT NULL,
	answer   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS cards_topic_position_idx ON cards (topic_id, position);
`

// PostgresSource reads the dataset from the topics and cards tables.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource creates a PostgreSQL-backed source.
func NewPostgresSource(pool *pgxpool.Pool) (*PostgresSource, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresSource{pool: pool}, nil
}

// Migrate creates the flashcard tables if they do not exist.
func (s *PostgresSource) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("migrate flashcard tables: %w", err)
	}
	return nil
}

// Load queries every topic with its cards in presentation order.
func (s *PostgresSource) Load(ctx context.Context) (*Dataset, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, selectDatasetSQL)
	if err != nil {
		return nil, fmt.Errorf("query dataset: %w", err)
	}
	defer rows.Close()

	b := newDatasetBuilder()
	for rows.Next() {
		var r topicRow
		if err := rows.Scan(&r.TopicID, &r.TopicName, &r.Question, &r.Answer); err != nil {
			return nil, fmt.Errorf("scan dataset row: %w", err)
		}
		b.add(r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dataset rows: %w", err)
	}

	return b.dataset(), nil
}

// HealthCheck verifies the database connection is alive.
func (s *PostgresSource) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
