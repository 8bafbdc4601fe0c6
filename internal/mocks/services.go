package mocks

import (
	"context"
	"sync"

	"github.com/user-directory-api/internal/models"
	"github.com/user-directory-api/internal/service"
	"github.com/user-directory-api/internal/validation"
)

// MockImportService is a mock implementation of ImportService
type MockImportService struct {
	ImportFunc func(ctx context.Context, sessionID string, upload *service.Upload) (int, error)
	Uploads    []*service.Upload
}

// Verify interface compliance
var _ service.ImportService = (*MockImportService)(nil)

func NewMockImportService() *MockImportService {
	return &MockImportService{Uploads: make([]*service.Upload, 0)}
}

func (m *MockImportService) Import(ctx context.Context, sessionID string, upload *service.Upload) (int, error) {
	m.Uploads = append(m.Uploads, upload)
	if m.ImportFunc != nil {
		return m.ImportFunc(ctx, sessionID, upload)
	}
	return 0, nil
}

// MockUserService is a mock implementation of UserService backed by a plain map of sessions
type MockUserService struct {
	mu           sync.Mutex
	Users        map[string][]models.User
	CreateErr    error
	Seeded       []string
	SessionIDs   []string
	LastForm     *validation.UserForm
	LastRequest  *models.CreateUserRequest
	SubmissionOf models.Submission
}

// Verify interface compliance
var _ service.UserService = (*MockUserService)(nil)

func NewMockUserService() *MockUserService {
	return &MockUserService{
		Users:        make(map[string][]models.User),
		SubmissionOf: models.Submission{State: models.SubmissionIdle},
	}
}

func (m *MockUserService) record(sessionID string) {
	m.SessionIDs = append(m.SessionIDs, sessionID)
}

func (m *MockUserService) List(ctx context.Context, sessionID string) (models.DirectoryState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(sessionID)
	return models.DirectoryState{Users: append([]models.User{}, m.Users[sessionID]...)}, nil
}

func (m *MockUserService) SeedDemo(ctx context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(sessionID)
	m.Seeded = append(m.Seeded, sessionID)
	return false, nil
}

func (m *MockUserService) Create(ctx context.Context, sessionID string, form *validation.UserForm) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(sessionID)
	m.LastForm = form
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	user := models.User{ID: "new-user", Name: form.Name, Email: form.Email, ProfilePhoto: service.DefaultAvatarURL}
	m.Users[sessionID] = append(m.Users[sessionID], user)
	return &user, nil
}

func (m *MockUserService) CreateFromRequest(ctx context.Context, sessionID string, req *models.CreateUserRequest) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(sessionID)
	m.LastRequest = req
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	user := models.User{ID: "new-user", Name: req.Name, Email: req.Email, ProfilePhoto: req.ProfilePhoto}
	m.Users[sessionID] = append(m.Users[sessionID], user)
	return &user, nil
}

func (m *MockUserService) Update(ctx context.Context, sessionID string, user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(sessionID)
	for i, u := range m.Users[sessionID] {
		if u.ID == user.ID {
			m.Users[sessionID][i] = user
			return nil
		}
	}
	return service.ErrUserNotFound
}

func (m *MockUserService) SetSelected(ctx context.Context, sessionID, id string, selected bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(sessionID)
	for i, u := range m.Users[sessionID] {
		if u.ID == id {
			m.Users[sessionID][i].Selected = selected
			return nil
		}
	}
	return service.ErrUserNotFound
}

func (m *MockUserService) Submission(sessionID string) models.Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SubmissionOf
}

// MockExportService is a mock implementation of ExportService
type MockExportService struct {
	ExportFunc func(ctx context.Context, sessionID string) ([]byte, error)
}

// Verify interface compliance
var _ service.ExportService = (*MockExportService)(nil)

func NewMockExportService() *MockExportService {
	return &MockExportService{}
}

func (m *MockExportService) Export(ctx context.Context, sessionID string) ([]byte, error) {
	if m.ExportFunc != nil {
		return m.ExportFunc(ctx, sessionID)
	}
	return []byte("PK\x03\x04"), nil
}
