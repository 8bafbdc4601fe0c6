package repository

import (
	"context"
	"time"

	"github.com/user-directory-api/internal/models"
)

// SnapshotRepository persists the users of a session directory so it can be
// rehydrated after a reload or a restart
type SnapshotRepository interface {
	// Load returns the snapshot for a session, or nil when none exists
	Load(ctx context.Context, sessionID string) (*models.Snapshot, error)
	Save(ctx context.Context, snapshot *models.Snapshot) error
	// PurgeExpired removes snapshots last updated before the cutoff
	PurgeExpired(ctx context.Context, before time.Time) (int, error)
	// Count returns the number of stored snapshots
	Count(ctx context.Context) (int, error)
}
