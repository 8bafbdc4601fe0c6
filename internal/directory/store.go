// Package directory holds per-session user directories and notifies
// subscribers whenever one changes.
package directory

import (
	"sync"

	"github.com/user-directory-api/internal/models"
)

// Listener receives a copy of the state after every mutation.
// Listeners must not mutate the store they are subscribed to.
type Listener func(models.DirectoryState)

// Store is one session's directory. All operations are synchronous and never fail.
type Store struct {
	// notifyMu serializes mutate+notify so listeners observe states in order
	notifyMu sync.Mutex

	mu        sync.Mutex
	state     models.DirectoryState
	listeners map[int]Listener
	nextID    int
}

// NewStore creates a store seeded with users (insertion order kept)
func NewStore(users []models.User) *Store {
	s := &Store{listeners: make(map[int]Listener)}
	s.state.Users = append([]models.User{}, users...)
	return s
}

// Subscribe registers fn for change notifications and returns a function that removes it
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Snapshot returns a deep copy of the current state
func (s *Store) Snapshot() models.DirectoryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Users returns a copy of the users in insertion order
func (s *Store) Users() []models.User {
	return s.Snapshot().Users
}

// Len returns the number of users
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.Users)
}

// ReplaceAll overwrites the collection
func (s *Store) ReplaceAll(users []models.User) {
	s.mutate(func(st *models.DirectoryState) bool {
		st.Users = append([]models.User{}, users...)
		return true
	})
}

// ReplaceIfEmpty sets the collection only when the store holds no users.
// It reports whether it did.
func (s *Store) ReplaceIfEmpty(users []models.User) bool {
	replaced := false
	s.mutate(func(st *models.DirectoryState) bool {
		if len(st.Users) > 0 {
			return false
		}
		st.Users = append([]models.User{}, users...)
		replaced = true
		return true
	})
	return replaced
}

// Append adds a user at the end
func (s *Store) Append(user models.User) {
	s.mutate(func(st *models.DirectoryState) bool {
		st.Users = append(st.Users, user)
		return true
	})
}

// Update replaces the record with the same id. It reports whether a record matched.
func (s *Store) Update(user models.User) bool {
	found := false
	s.mutate(func(st *models.DirectoryState) bool {
		if i := indexOf(st.Users, user.ID); i >= 0 {
			st.Users[i] = user
			found = true
		}
		return found
	})
	return found
}

// SetSelected sets the selection flag on one record. It reports whether a record matched.
func (s *Store) SetSelected(id string, selected bool) bool {
	found := false
	s.mutate(func(st *models.DirectoryState) bool {
		if i := indexOf(st.Users, id); i >= 0 {
			u := st.Users[i]
			u.Selected = selected
			st.Users[i] = u
			found = true
		}
		return found
	})
	return found
}

// SetLoading sets the transient loading flag
func (s *Store) SetLoading(loading bool) {
	s.mutate(func(st *models.DirectoryState) bool {
		if st.Loading == loading {
			return false
		}
		st.Loading = loading
		return true
	})
}

// SetError sets or clears (nil) the transient error message
func (s *Store) SetError(msg *string) {
	s.mutate(func(st *models.DirectoryState) bool {
		if msg == nil {
			if st.Error == nil {
				return false
			}
			st.Error = nil
			return true
		}
		m := *msg
		st.Error = &m
		return true
	})
}

func (s *Store) mutate(fn func(*models.DirectoryState) bool) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if !fn(&s.state) {
		s.mu.Unlock()
		return
	}
	snap := s.state.Clone()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap.Clone())
	}
}

func indexOf(users []models.User, id string) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}
