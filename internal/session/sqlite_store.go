package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists sessions in a SQLite database so logins survive restarts.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const getSession = `
SELECT id, token, user_id, email, flashes, expires_at
FROM sessions
WHERE id = ?`

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Session, error) {
	var (
		sess      Session
		flashes   string
		expiresAt int64
	)
	err := s.db.QueryRowContext(ctx, getSession, id).
		Scan(&sess.ID, &sess.Token, &sess.UserID, &sess.Email, &flashes, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if flashes != "" {
		if err := json.Unmarshal([]byte(flashes), &sess.Flashes); err != nil {
			return nil, fmt.Errorf("decode flashes: %w", err)
		}
	}
	if len(sess.Flashes) == 0 {
		sess.Flashes = nil
	}
	sess.ExpiresAt = time.UnixMilli(expiresAt)
	return &sess, nil
}

const upsertSession = `
INSERT INTO sessions (id, token, user_id, email, flashes, expires_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    token = excluded.token,
    user_id = excluded.user_id,
    email = excluded.email,
    flashes = excluded.flashes,
    expires_at = excluded.expires_at,
    updated_at = excluded.updated_at`

func (s *SQLiteStore) Save(ctx context.Context, sess *Session) error {
	flashes := sess.Flashes
	if flashes == nil {
		flashes = []Flash{}
	}
	encoded, err := json.Marshal(flashes)
	if err != nil {
		return fmt.Errorf("encode flashes: %w", err)
	}

	now := time.Now().UnixMilli()
	_, err = s.db.ExecContext(ctx, upsertSession,
		sess.ID, sess.Token, sess.UserID, sess.Email, string(encoded),
		sess.ExpiresAt.UnixMilli(), now, now)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
