package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/user-directory-api/internal/models"
	"github.com/user-directory-api/internal/service"
	"github.com/user-directory-api/internal/validation"
)

// UserHandler handles the JSON user endpoints
type UserHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(services *service.Services, log zerolog.Logger) *UserHandler {
	return &UserHandler{
		services: services,
		log:      log.With().Str("handler", "user").Logger(),
	}
}

type updateUserRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	ProfilePhoto string `json:"profilePhoto"`
	Selected     bool   `json:"selected"`
}

type selectionRequest struct {
	Selected *bool `json:"selected" binding:"required"`
}

// List handles GET /v1/users
func (h *UserHandler) List(c *gin.Context) {
	state, err := h.services.Users.List(c.Request.Context(), sessionID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Create handles POST /v1/users
func (h *UserHandler) Create(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	user, err := h.services.Users.CreateFromRequest(c.Request.Context(), sessionID(c), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Update handles PUT /v1/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	user := models.User{
		ID:           c.Param("id"),
		Name:         req.Name,
		Email:        req.Email,
		ProfilePhoto: req.ProfilePhoto,
		Selected:     req.Selected,
	}
	if err := h.services.Users.Update(c.Request.Context(), sessionID(c), user); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// SetSelection handles PATCH /v1/users/:id/selection
func (h *UserHandler) SetSelection(c *gin.Context) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "selected is required"})
		return
	}

	id := c.Param("id")
	if err := h.services.Users.SetSelected(c.Request.Context(), sessionID(c), id, *req.Selected); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "selected": *req.Selected})
}

// Submission handles GET /v1/submission
func (h *UserHandler) Submission(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Users.Submission(sessionID(c)))
}

func (h *UserHandler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	}

	body := gin.H{"error": messageFor(err)}
	var verrs *validation.Errors
	if errors.As(err, &verrs) {
		body["errors"] = verrs.Fields
	}
	c.JSON(status, body)
}
