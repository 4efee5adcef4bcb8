package flashcard

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLiteSchema creates the tables read by SQLiteSource.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS topics (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	position INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS cards (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	topic_id TEXT NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
	position INTEGER NOT NULL DEFAULT 0,
	question TEXT NOT NULL,
	answer   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS cards_topic_position_idx ON cards (topic_id, position);
`

// SQLiteSource reads the dataset from a SQLite database with the same layout
// as PostgresSource.
type SQLiteSource struct {
	db *sql.DB
}

// NewSQLiteSource creates a SQLite-backed source.
func NewSQLiteSource(db *sql.DB) (*SQLiteSource, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &SQLiteSource{db: db}, nil
}

// Migrate creates the flashcard tables if they do not exist.
func (s *SQLiteSource) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, SQLiteSchema); err != nil {
		return fmt.Errorf("migrate flashcard tables: %w", err)
	}
	return nil
}

// Load queries every topic with its cards in presentation order.
func (s *SQLiteSource) Load(ctx context.Context) (*Dataset, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, selectDatasetSQL)
	if err != nil {
		return nil, fmt.Errorf("query dataset: %w", err)
	}
	defer rows.Close()

	b := newDatasetBuilder()
	for rows.Next() {
		var r topicRow
		var q, a sql.NullString
		if err := rows.Scan(&r.TopicID, &r.TopicName, &q, &a); err != nil {
			return nil, fmt.Errorf("scan dataset row: %w", err)
		}
		if q.Valid {
			r.Question = &q.String
		}
		if a.Valid {
			r.Answer = &a.String
		}
		b.add(r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dataset rows: %w", err)
	}

	return b.dataset(), nil
}

// HealthCheck verifies the database is reachable.
func (s *SQLiteSource) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
