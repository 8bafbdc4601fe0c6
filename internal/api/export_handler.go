package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/user-directory-api/internal/service"
	"github.com/user-directory-api/internal/spreadsheet"
)

// ExportHandler handles export endpoints
type ExportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// Download handles GET /exports and GET /v1/exports.
// Responds with the session's users as user_list.xlsx.
func (h *ExportHandler) Download(c *gin.Context) {
	data, err := h.services.Export.Export(c.Request.Context(), sessionID(c))
	if err != nil {
		h.log.Error().Err(err).Str("session_id", sessionID(c)).Msg("Export failed")
		if status := statusFor(err); status != http.StatusInternalServerError {
			c.JSON(status, gin.H{"error": messageFor(err)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export users"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+spreadsheet.ExportFilename+`"`)
	c.Data(http.StatusOK, spreadsheet.XLSXContentType, data)
}
