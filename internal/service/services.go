package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/user-directory-api/internal/config"
	"github.com/user-directory-api/internal/directory"
	"github.com/user-directory-api/internal/models"
	"github.com/user-directory-api/internal/validation"
)

// StoreProvider resolves the directory store of a session
type StoreProvider interface {
	Get(ctx context.Context, sessionID string) (*directory.Store, error)
}

// Upload is a file received from the client
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ImportService defines the interface for import operations
type ImportService interface {
	Import(ctx context.Context, sessionID string, upload *Upload) (int, error)
}

// UserService defines the interface for directory operations on users
type UserService interface {
	List(ctx context.Context, sessionID string) (models.DirectoryState, error)
	SeedDemo(ctx context.Context, sessionID string) (bool, error)
	Create(ctx context.Context, sessionID string, form *validation.UserForm) (*models.User, error)
	CreateFromRequest(ctx context.Context, sessionID string, req *models.CreateUserRequest) (*models.User, error)
	Update(ctx context.Context, sessionID string, user models.User) error
	SetSelected(ctx context.Context, sessionID, id string, selected bool) error
	Submission(sessionID string) models.Submission
}

// ExportService defines the interface for export operations
type ExportService interface {
	Export(ctx context.Context, sessionID string) ([]byte, error)
}

// Services holds all service interfaces
type Services struct {
	Import ImportService
	Users  UserService
	Export ExportService
}

// NewServices creates all services
func NewServices(stores StoreProvider, cfg *config.Config, log zerolog.Logger) *Services {
	pool := newWorkPool(0, log)
	creator := &SimulatedCreator{Delay: cfg.Directory.CreateDelay}

	return &Services{
		Import: newImportService(stores, pool, log),
		Users:  newUserService(stores, creator, validation.NewValidator(cfg.Upload.MaxPhotoSize), cfg, log),
		Export: newExportService(stores, log),
	}
}
