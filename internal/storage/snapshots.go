package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/claude/liftlog/internal/models"
)

// The snapshot table holds at most one row: the last autosaved session.
// Last snapshot wins; there is no history.

// SaveSnapshot persists the in-progress session for crash recovery.
func (db *DB) SaveSnapshot(ctx context.Context, s *models.Session) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	_, err = db.sql.ExecContext(ctx,
		`INSERT INTO session_snapshots (id, payload, saved_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, saved_at = CURRENT_TIMESTAMP`,
		string(payload))
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the last autosaved session, or (nil, nil) when none
// exists.
func (db *DB) LoadSnapshot(ctx context.Context) (*models.Session, error) {
	var payload string
	err := db.sql.QueryRowContext(ctx,
		`SELECT payload FROM session_snapshots WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	var s models.Session
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &s, nil
}

// ClearSnapshot removes the autosaved session after completion or discard.
func (db *DB) ClearSnapshot(ctx context.Context) error {
	_, err := db.sql.ExecContext(ctx, `DELETE FROM session_snapshots WHERE id = 1`)
	if err != nil {
		return fmt.Errorf("clearing snapshot: %w", err)
	}
	return nil
}
