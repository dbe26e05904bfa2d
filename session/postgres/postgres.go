// Package postgres provides a core.SessionStore backed by PostgreSQL via
// pgx. Turns are stored as JSONB rows ordered by a sequence column.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hupe1980/agentkit/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS agentkit_sessions (
	id          TEXT PRIMARY KEY,
	endpoint_id TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS agentkit_turns (
	seq        BIGSERIAL PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES agentkit_sessions(id) ON DELETE CASCADE,
	turn       JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS agentkit_turns_session_idx ON agentkit_turns (session_id, seq);
`

// Store implements core.SessionStore on a pgx pool.
type Store struct {
	DB *pgxpool.Pool
}

var _ core.SessionStore = (*Store)(nil)

// New connects to Postgres.
func New(ctx context.Context, connStr string) (*Store, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	return &Store{DB: db}, nil
}

// NewFromPool wraps an existing pool.
func NewFromPool(db *pgxpool.Pool) *Store { return &Store{DB: db} }

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.DB.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate session schema: %w", err)
	}

	return nil
}

// Close releases the pool.
func (s *Store) Close() {
	if s != nil && s.DB != nil {
		s.DB.Close()
	}
}

// Create implements core.SessionStore.
func (s *Store) Create(ctx context.Context, endpointID string) (string, error) {
	id := core.NewID()

	if _, err := s.DB.Exec(ctx,
		`INSERT INTO agentkit_sessions (id, endpoint_id) VALUES ($1, $2)`, id, endpointID); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	return id, nil
}

// Get implements core.SessionStore.
func (s *Store) Get(ctx context.Context, id string) (*core.Session, error) {
	sess := &core.Session{ID: id, Turns: []core.Turn{}}

	err := s.DB.QueryRow(ctx,
		`SELECT endpoint_id, created_at, updated_at FROM agentkit_sessions WHERE id = $1`, id).
		Scan(&sess.EndpointID, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	rows, err := s.DB.Query(ctx,
		`SELECT turn FROM agentkit_turns WHERE session_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("get turns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}

		var t core.Turn
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("decode turn: %w", err)
		}

		sess.Turns = append(sess.Turns, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read turns: %w", err)
	}

	return sess, nil
}

// Append implements core.SessionStore. All turns are written in one
// transaction holding the session row lock, so concurrent appends never
// interleave.
func (s *Store) Append(ctx context.Context, id string, turns ...core.Turn) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked string

	err = tx.QueryRow(ctx, `SELECT id FROM agentkit_sessions WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("lock session: %w", err)
	}

	batch := &pgx.Batch{}

	for _, t := range turns {
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("encode turn: %w", err)
		}

		batch.Queue(`INSERT INTO agentkit_turns (session_id, turn) VALUES ($1, $2::jsonb)`, id, raw)
	}

	batch.Queue(`UPDATE agentkit_sessions SET updated_at = $2 WHERE id = $1`, id, time.Now().UTC())

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("append turns: %w", err)
	}

	return tx.Commit(ctx)
}

// Delete implements core.SessionStore.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM agentkit_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}

	return nil
}
