package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// UserStateRepo stores one JSON document per user.
type UserStateRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewUserStateRepo(db *sql.DB) *UserStateRepo {
	return &UserStateRepo{db: db, now: time.Now}
}

func (r *UserStateRepo) LoadAll(ctx context.Context) (map[string]json.RawMessage, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id, state FROM user_state`)
	if err != nil {
		return nil, fmt.Errorf("failed to query user state: %w", err)
	}
	defer rows.Close()

	users := make(map[string]json.RawMessage)
	for rows.Next() {
		var userID, state string
		if err := rows.Scan(&userID, &state); err != nil {
			return nil, fmt.Errorf("failed to scan user state: %w", err)
		}
		users[userID] = json.RawMessage(state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user state: %w", err)
	}
	return users, nil
}

// Get returns a single user's document, or nil when absent.
func (r *UserStateRepo) Get(ctx context.Context, userID string) (json.RawMessage, error) {
	var state string
	err := r.db.QueryRowContext(ctx, `SELECT state FROM user_state WHERE user_id = ?`, userID).Scan(&state)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user %s: %w", userID, err)
	}
	return json.RawMessage(state), nil
}

// SaveAll upserts every document and deletes rows for users not in the map.
func (r *UserStateRepo) SaveAll(ctx context.Context, users map[string]json.RawMessage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stale, err := staleUsers(ctx, tx, users)
	if err != nil {
		return err
	}
	for _, userID := range stale {
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_state WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("failed to delete user %s: %w", userID, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO user_state (user_id, state, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := r.now().UTC()
	for userID, state := range users {
		if _, err := stmt.ExecContext(ctx, userID, string(state), now); err != nil {
			return fmt.Errorf("failed to upsert user %s: %w", userID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user state: %w", err)
	}
	return nil
}

func staleUsers(ctx context.Context, tx *sql.Tx, keep map[string]json.RawMessage) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT user_id FROM user_state`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		if _, ok := keep[userID]; !ok {
			stale = append(stale, userID)
		}
	}
	return stale, rows.Err()
}
