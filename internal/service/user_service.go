package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/user-directory-api/internal/config"
	"github.com/user-directory-api/internal/models"
	"github.com/user-directory-api/internal/validation"
)

// SubmissionErrorMessage is reported when the creation step fails
const SubmissionErrorMessage = "Failed to add user"

// Creator performs the remote part of creating a user
type Creator interface {
	Create(ctx context.Context, user models.User) (models.User, error)
}

// SimulatedCreator stands in for a remote user service. It waits Delay and
// returns the user unchanged, or gives up when ctx is done.
type SimulatedCreator struct {
	Delay time.Duration
}

// Create implements Creator
func (c *SimulatedCreator) Create(ctx context.Context, user models.User) (models.User, error) {
	timer := time.NewTimer(c.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return user, nil
	case <-ctx.Done():
		return models.User{}, ctx.Err()
	}
}

// userService is the concrete implementation of UserService
type userService struct {
	stores    StoreProvider
	creator   Creator
	validator *validation.Validator
	timeout   time.Duration
	seedDemo  bool
	gate      *sessionGate
	newID     IDGenerator
	log       zerolog.Logger

	mu          sync.Mutex
	submissions map[string]models.Submission
}

// newUserService creates a new UserService
func newUserService(stores StoreProvider, creator Creator, v *validation.Validator, cfg *config.Config, log zerolog.Logger) *userService {
	return &userService{
		stores:      stores,
		creator:     creator,
		validator:   v,
		timeout:     cfg.Directory.CreateTimeout,
		seedDemo:    cfg.Directory.SeedDemo,
		gate:        newSessionGate(),
		newID:       NewID,
		log:         log.With().Str("service", "users").Logger(),
		submissions: make(map[string]models.Submission),
	}
}

// List returns the session's directory state
func (s *userService) List(ctx context.Context, sessionID string) (models.DirectoryState, error) {
	store, err := s.stores.Get(ctx, sessionID)
	if err != nil {
		return models.DirectoryState{}, err
	}
	return store.Snapshot(), nil
}

// SeedDemo fills an empty directory with demo users when enabled. It reports whether it did.
func (s *userService) SeedDemo(ctx context.Context, sessionID string) (bool, error) {
	if !s.seedDemo {
		return false, nil
	}
	store, err := s.stores.Get(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if store.Len() > 0 {
		return false, nil
	}

	store.SetLoading(true)
	seeded := store.ReplaceIfEmpty(DemoUsers(DemoUserCount))
	store.SetLoading(false)

	if seeded {
		s.log.Debug().Str("session_id", sessionID).Msg("Seeded demo users")
	}
	return seeded, nil
}

// Create validates the browser form and submits the new user
func (s *userService) Create(ctx context.Context, sessionID string, form *validation.UserForm) (*models.User, error) {
	if err := s.validator.ValidateForm(form); err != nil {
		return nil, err
	}
	return s.submit(ctx, sessionID, models.User{
		Name:         form.Name,
		Email:        form.Email,
		ProfilePhoto: form.Photo.DataURI(),
	})
}

// CreateFromRequest validates a JSON request and submits the new user.
// Without a photo the default avatar is used.
func (s *userService) CreateFromRequest(ctx context.Context, sessionID string, req *models.CreateUserRequest) (*models.User, error) {
	if err := s.validator.ValidateRequest(req); err != nil {
		return nil, err
	}
	photo := req.ProfilePhoto
	if photo == "" {
		photo = DefaultAvatarURL
	}
	return s.submit(ctx, sessionID, models.User{
		Name:         req.Name,
		Email:        req.Email,
		ProfilePhoto: photo,
	})
}

// submit runs the creation step and appends the user on success.
// The store is not touched when creation fails.
func (s *userService) submit(ctx context.Context, sessionID string, user models.User) (*models.User, error) {
	if !s.gate.TryEnter(sessionID) {
		return nil, ErrSubmissionInProgress
	}
	defer s.gate.Leave(sessionID)

	store, err := s.stores.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	s.setSubmission(sessionID, models.Submission{State: models.SubmissionSubmitting})

	user.ID = s.newID()
	user.Selected = false

	createCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	created, err := s.creator.Create(createCtx, user)
	if err != nil {
		s.setSubmission(sessionID, models.Submission{State: models.SubmissionFailed, Error: SubmissionErrorMessage})
		s.log.Error().Err(err).Str("session_id", sessionID).Msg("User submission failed")
		return nil, &SubmissionError{Err: err}
	}

	store.Append(created)
	s.setSubmission(sessionID, models.Submission{State: models.SubmissionSucceeded})

	s.log.Info().Str("session_id", sessionID).Str("user_id", created.ID).Msg("User added")
	return &created, nil
}

// Update replaces a user record by id
func (s *userService) Update(ctx context.Context, sessionID string, user models.User) error {
	store, err := s.stores.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if !store.Update(user) {
		return ErrUserNotFound
	}
	return nil
}

// SetSelected sets the selection flag of one user
func (s *userService) SetSelected(ctx context.Context, sessionID, id string, selected bool) error {
	store, err := s.stores.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if !store.SetSelected(id, selected) {
		return ErrUserNotFound
	}
	return nil
}

// Submission returns the session's submission status. A finished status is
// reported once and then returns to idle.
func (s *userService) Submission(sessionID string) models.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.submissions[sessionID]
	if !ok {
		return models.Submission{State: models.SubmissionIdle}
	}
	if sub.State == models.SubmissionSucceeded || sub.State == models.SubmissionFailed {
		delete(s.submissions, sessionID)
	}
	return sub
}

func (s *userService) setSubmission(sessionID string, sub models.Submission) {
	s.mu.Lock()
	s.submissions[sessionID] = sub
	s.mu.Unlock()
}
