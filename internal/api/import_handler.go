package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/user-directory-api/internal/config"
	"github.com/user-directory-api/internal/service"
)

// ImportHandler handles import endpoints
type ImportHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "import").Logger(),
	}
}

// ImportForm handles POST /imports from the browser form
func (h *ImportHandler) ImportForm(c *gin.Context) {
	n, err := h.importUpload(c)
	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, errMissingFile) {
			status = statusFor(err)
		}
		c.HTML(status, "index.html", indexPage{Error: h.message(err)})
		return
	}

	h.log.Debug().Int("users", n).Msg("Form import completed")
	c.Redirect(http.StatusSeeOther, "/users?notice=imported")
}

// Import handles POST /v1/imports
func (h *ImportHandler) Import(c *gin.Context) {
	n, err := h.importUpload(c)
	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, errMissingFile) {
			status = statusFor(err)
		}
		c.JSON(status, gin.H{"error": h.message(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"imported": n,
		"message":  msgUsersImported,
	})
}

func (h *ImportHandler) importUpload(c *gin.Context) (int, error) {
	upload, err := readUpload(c, "file", h.cfg.Upload.MaxUploadSize)
	if err != nil {
		return 0, err
	}

	n, err := h.services.Import.Import(c.Request.Context(), sessionID(c), upload)
	if err != nil && statusFor(err) == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("file", upload.Filename).Msg("Import failed")
	}
	return n, err
}

func (h *ImportHandler) message(err error) string {
	if errors.Is(err, errMissingFile) {
		return "file is required"
	}
	return messageFor(err)
}
