package directory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/user-directory-api/internal/models"
	"github.com/user-directory-api/internal/repository"
)

const saveTimeout = 5 * time.Second

type session struct {
	store      *Store
	lastAccess time.Time
}

// Registry owns one Store per browser session. Stores are rehydrated from the
// snapshot repository on first use and saved back after every change.
type Registry struct {
	repo repository.SnapshotRepository
	ttl  time.Duration
	log  zerolog.Logger
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*session

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewRegistry creates a Registry. A ttl of zero keeps sessions forever.
func NewRegistry(repo repository.SnapshotRepository, ttl time.Duration, log zerolog.Logger) *Registry {
	return &Registry{
		repo:     repo,
		ttl:      ttl,
		log:      log.With().Str("component", "registry").Logger(),
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// SweepStats reports the outcome of one Sweep
type SweepStats struct {
	Evicted int // sessions dropped from memory
	Purged  int // snapshots removed from storage
	Stored  int // snapshots left in storage
}

// Get returns the store for a session, loading its snapshot if needed.
// The snapshot is loaded without holding the registry lock; when two requests
// race to load the same session the first store registered wins.
func (r *Registry) Get(ctx context.Context, sessionID string) (*Store, error) {
	if store, ok := r.lookup(sessionID); ok {
		return store, nil
	}

	snap, err := r.repo.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", sessionID, err)
	}

	var users []models.User
	if snap != nil && !r.expired(snap.UpdatedAt) {
		users = snap.Users
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[sessionID]; ok {
		s.lastAccess = r.now()
		return s.store, nil
	}

	store := NewStore(users)
	store.Subscribe(r.persist(sessionID))
	r.sessions[sessionID] = &session{store: store, lastAccess: r.now()}
	if len(users) > 0 {
		r.log.Debug().Str("session_id", sessionID).Int("users", len(users)).Msg("Session rehydrated")
	}
	return store, nil
}

func (r *Registry) lookup(sessionID string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, false
	}
	s.lastAccess = r.now()
	return s.store, true
}

// Len returns the number of sessions held in memory
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts idle sessions from memory and purges expired snapshots
func (r *Registry) Sweep(ctx context.Context) (SweepStats, error) {
	var stats SweepStats
	if r.ttl <= 0 {
		return stats, nil
	}
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	for id, s := range r.sessions {
		if s.lastAccess.Before(cutoff) {
			delete(r.sessions, id)
			stats.Evicted++
		}
	}
	r.mu.Unlock()

	purged, err := r.repo.PurgeExpired(ctx, cutoff)
	if err != nil {
		return stats, fmt.Errorf("purging snapshots: %w", err)
	}
	stats.Purged = purged

	stored, err := r.repo.Count(ctx)
	if err != nil {
		return stats, fmt.Errorf("counting snapshots: %w", err)
	}
	stats.Stored = stored
	return stats, nil
}

// StartSweeper runs Sweep on an interval until ctx is cancelled or Stop is called
func (r *Registry) StartSweeper(ctx context.Context, interval time.Duration) {
	r.mu.Lock()
	if r.running || r.ttl <= 0 {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				stats, err := r.Sweep(r.ctx)
				if err != nil {
					r.log.Error().Err(err).Msg("Session sweep failed")
					continue
				}
				if stats.Evicted > 0 || stats.Purged > 0 {
					r.log.Info().
						Int("evicted", stats.Evicted).
						Int("purged", stats.Purged).
						Int("stored", stats.Stored).
						Msg("Session sweep completed")
				}
			}
		}
	}()
	r.log.Info().Dur("interval", interval).Dur("ttl", r.ttl).Msg("Session sweeper started")
}

// Stop halts the sweeper
func (r *Registry) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.cancel()
	r.running = false
	r.mu.Unlock()

	r.wg.Wait()
	r.log.Info().Msg("Session sweeper stopped")
}

func (r *Registry) expired(updatedAt time.Time) bool {
	return r.ttl > 0 && r.now().Sub(updatedAt) > r.ttl
}

// persist saves the users of every new state. Loading and error flags are session-transient.
func (r *Registry) persist(sessionID string) Listener {
	return func(state models.DirectoryState) {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()

		snap := &models.Snapshot{
			SessionID: sessionID,
			Users:     state.Users,
			UpdatedAt: r.now(),
		}
		if err := r.repo.Save(ctx, snap); err != nil {
			r.log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to save session snapshot")
		}
	}
}
