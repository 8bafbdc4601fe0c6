package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/user-directory-api/internal/spreadsheet"
)

// exportService is the concrete implementation of ExportService
type exportService struct {
	stores StoreProvider
	log    zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(stores StoreProvider, log zerolog.Logger) *exportService {
	return &exportService{
		stores: stores,
		log:    log.With().Str("service", "export").Logger(),
	}
}

// Export encodes the session's users as an xlsx workbook
func (s *exportService) Export(ctx context.Context, sessionID string) ([]byte, error) {
	store, err := s.stores.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	users := store.Users()
	data, err := spreadsheet.Encode(users)
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}

	s.log.Info().
		Str("session_id", sessionID).
		Int("users", len(users)).
		Int("bytes", len(data)).
		Msg("Export completed")

	return data, nil
}
