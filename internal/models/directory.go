package models

import "time"

// DirectoryState is the full state of one session's directory
type DirectoryState struct {
	Users   []User  `json:"users"`
	Loading bool    `json:"loading"`
	Error   *string `json:"error"`
}

// Clone returns a deep copy so callers cannot mutate store internals
func (s DirectoryState) Clone() DirectoryState {
	out := DirectoryState{
		Users:   make([]User, len(s.Users)),
		Loading: s.Loading,
	}
	copy(out.Users, s.Users)
	if s.Error != nil {
		msg := *s.Error
		out.Error = &msg
	}
	return out
}

// Snapshot is the persisted part of a session directory
type Snapshot struct {
	SessionID string    `json:"session_id"`
	Users     []User    `json:"users"`
	UpdatedAt time.Time `json:"updated_at"`
}
