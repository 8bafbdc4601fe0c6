package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/user-directory-api/internal/database"
	"github.com/user-directory-api/internal/models"
)

// snapshotRepo is the PostgreSQL implementation of SnapshotRepository
type snapshotRepo struct {
	db *database.DB
}

// NewSnapshotRepo creates a new snapshot repository
func NewSnapshotRepo(db *database.DB) SnapshotRepository {
	return &snapshotRepo{db: db}
}

// Load retrieves a session snapshot by session ID
func (r *snapshotRepo) Load(ctx context.Context, sessionID string) (*models.Snapshot, error) {
	query := `SELECT session_id, users, updated_at FROM directory_snapshots WHERE session_id = $1`

	var snap models.Snapshot
	var usersJSON []byte
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(&snap.SessionID, &usersJSON, &snap.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(usersJSON, &snap.Users); err != nil {
		return nil, fmt.Errorf("decoding users for session %s: %w", sessionID, err)
	}
	return &snap, nil
}

// Save inserts or replaces a session snapshot
func (r *snapshotRepo) Save(ctx context.Context, snapshot *models.Snapshot) error {
	users := snapshot.Users
	if users == nil {
		users = []models.User{}
	}
	usersJSON, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encoding users: %w", err)
	}

	query := `
		INSERT INTO directory_snapshots (session_id, users, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id) DO UPDATE SET
			users = EXCLUDED.users,
			updated_at = EXCLUDED.updated_at
	`
	_, err = r.db.ExecContext(ctx, query, snapshot.SessionID, usersJSON, snapshot.UpdatedAt)
	return err
}

// PurgeExpired deletes snapshots not updated since the cutoff
func (r *snapshotRepo) PurgeExpired(ctx context.Context, before time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM directory_snapshots WHERE updated_at < $1", before)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// Count returns the number of stored snapshots
func (r *snapshotRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM directory_snapshots").Scan(&count)
	return count, err
}
