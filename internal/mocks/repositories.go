package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/user-directory-api/internal/models"
	"github.com/user-directory-api/internal/repository"
)

// MockSnapshotRepository is a mock implementation of SnapshotRepository
type MockSnapshotRepository struct {
	mu        sync.Mutex
	Snapshots map[string]*models.Snapshot
	Saves     int
	LoadErr   error
	SaveErr   error
}

// Verify interface compliance
var _ repository.SnapshotRepository = (*MockSnapshotRepository)(nil)

func NewMockSnapshotRepository() *MockSnapshotRepository {
	return &MockSnapshotRepository{
		Snapshots: make(map[string]*models.Snapshot),
	}
}

func (m *MockSnapshotRepository) Load(ctx context.Context, sessionID string) (*models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	snap, ok := m.Snapshots[sessionID]
	if !ok {
		return nil, nil
	}
	cp := *snap
	cp.Users = append([]models.User{}, snap.Users...)
	return &cp, nil
}

func (m *MockSnapshotRepository) Save(ctx context.Context, snapshot *models.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	cp := *snapshot
	cp.Users = append([]models.User{}, snapshot.Users...)
	m.Snapshots[snapshot.SessionID] = &cp
	return nil
}

func (m *MockSnapshotRepository) PurgeExpired(ctx context.Context, before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	purged := 0
	for id, snap := range m.Snapshots {
		if snap.UpdatedAt.Before(before) {
			delete(m.Snapshots, id)
			purged++
		}
	}
	return purged, nil
}

func (m *MockSnapshotRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Snapshots), nil
}

// SaveCount returns how many times Save was called
func (m *MockSnapshotRepository) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Saves
}
