package repository

import (
	"context"
	"sync"
	"time"

	"github.com/user-directory-api/internal/models"
)

// memoryRepo keeps snapshots in process memory. Used when no database is configured.
type memoryRepo struct {
	mu        sync.RWMutex
	snapshots map[string]models.Snapshot
}

// NewMemory creates an in-memory snapshot repository
func NewMemory() SnapshotRepository {
	return &memoryRepo{snapshots: make(map[string]models.Snapshot)}
}

func (r *memoryRepo) Load(ctx context.Context, sessionID string) (*models.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap, ok := r.snapshots[sessionID]
	if !ok {
		return nil, nil
	}
	snap.Users = append([]models.User{}, snap.Users...)
	return &snap, nil
}

func (r *memoryRepo) Save(ctx context.Context, snapshot *models.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := *snapshot
	snap.Users = append([]models.User{}, snapshot.Users...)
	r.snapshots[snapshot.SessionID] = snap
	return nil
}

func (r *memoryRepo) PurgeExpired(ctx context.Context, before time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	purged := 0
	for id, snap := range r.snapshots {
		if snap.UpdatedAt.Before(before) {
			delete(r.snapshots, id)
			purged++
		}
	}
	return purged, nil
}

func (r *memoryRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.snapshots), nil
}
