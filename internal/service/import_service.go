package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/user-directory-api/internal/spreadsheet"
)

// ImportErrorMessage is reported when an upload cannot be decoded
const ImportErrorMessage = "Error processing file"

// importService is the concrete implementation of ImportService
type importService struct {
	stores StoreProvider
	pool   *workPool
	gate   *sessionGate
	newID  IDGenerator
	avatar AvatarPicker
	log    zerolog.Logger
}

// newImportService creates a new ImportService
func newImportService(stores StoreProvider, pool *workPool, log zerolog.Logger) *importService {
	return &importService{
		stores: stores,
		pool:   pool,
		gate:   newSessionGate(),
		newID:  NewID,
		avatar: RandomAvatar,
		log:    log.With().Str("service", "import").Logger(),
	}
}

// Import replaces the session directory with the users read from an upload.
// Files outside the allow-list are rejected before any decoding. A file that
// fails to decode leaves the directory as it was and is only reported to the caller.
func (s *importService) Import(ctx context.Context, sessionID string, upload *Upload) (int, error) {
	if !spreadsheet.ValidateFileKind(upload.Filename, upload.ContentType) {
		s.log.Warn().
			Str("session_id", sessionID).
			Str("file", upload.Filename).
			Str("content_type", upload.ContentType).
			Msg("Rejected upload")
		return 0, fmt.Errorf("%w: %s", spreadsheet.ErrInvalidFileKind, upload.Filename)
	}

	if !s.gate.TryEnter(sessionID) {
		return 0, ErrImportInProgress
	}
	defer s.gate.Leave(sessionID)

	store, err := s.stores.Get(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	if err := s.pool.Acquire(ctx); err != nil {
		return 0, err
	}
	defer s.pool.Release()

	startTime := time.Now()
	store.SetLoading(true)
	defer store.SetLoading(false)

	rows, err := spreadsheet.Decode(upload.Data)
	if err != nil {
		s.log.Error().Err(err).Str("session_id", sessionID).Str("file", upload.Filename).Msg("Import failed")
		return 0, err
	}

	users := NormalizeRows(rows, s.newID, s.avatar)
	store.ReplaceAll(users)

	s.log.Info().
		Str("session_id", sessionID).
		Str("file", upload.Filename).
		Int("users", len(users)).
		Int64("duration_ms", time.Since(startTime).Milliseconds()).
		Msg("Import completed")

	return len(users), nil
}
