package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/user-directory-api/internal/config"
	"github.com/user-directory-api/internal/models"
	"github.com/user-directory-api/internal/service"
	"github.com/user-directory-api/internal/validation"
)

// indexPage is the data behind the creation and import forms
type indexPage struct {
	Name       string
	Email      string
	Errors     *validation.Errors
	Notice     string
	Error      string
	Submitting bool
}

// usersPage is the data behind the directory listing
type usersPage struct {
	Users   []models.User
	Loading bool
	Error   string
	Notice  string
}

// PageHandler serves the browser pages
type PageHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *PageHandler {
	return &PageHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "page").Logger(),
	}
}

// Index handles GET /
func (h *PageHandler) Index(c *gin.Context) {
	page := indexPage{}

	sub := h.services.Users.Submission(sessionID(c))
	switch sub.State {
	case models.SubmissionSubmitting:
		page.Submitting = true
	case models.SubmissionFailed:
		page.Error = sub.Error
	case models.SubmissionSucceeded:
		page.Notice = msgUserAdded
	}

	c.HTML(http.StatusOK, "index.html", page)
}

// ListUsers handles GET /users
func (h *PageHandler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()
	sid := sessionID(c)

	if _, err := h.services.Users.SeedDemo(ctx, sid); err != nil {
		h.log.Error().Err(err).Str("session_id", sid).Msg("Failed to seed demo users")
	}

	state, err := h.services.Users.List(ctx, sid)
	if err != nil {
		h.log.Error().Err(err).Str("session_id", sid).Msg("Failed to load directory")
		c.HTML(http.StatusInternalServerError, "users.html", usersPage{Error: msgInternal})
		return
	}

	page := usersPage{
		Users:   state.Users,
		Loading: state.Loading,
		Notice:  notices[c.Query("notice")],
	}
	if state.Error != nil {
		page.Error = *state.Error
	}
	if h.services.Users.Submission(sid).State == models.SubmissionSucceeded {
		page.Notice = msgUserAdded
	}

	c.HTML(http.StatusOK, "users.html", page)
}

// CreateUser handles POST /users
func (h *PageHandler) CreateUser(c *gin.Context) {
	form, err := parseMultipart(c, h.cfg.Upload.MaxUploadSize)
	if err != nil {
		status := http.StatusBadRequest
		if isTooLarge(err) {
			status = http.StatusRequestEntityTooLarge
		}
		c.HTML(status, "index.html", indexPage{Error: messageFor(err)})
		return
	}

	userForm, err := readUserForm(form)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read profile photo")
		c.HTML(http.StatusBadRequest, "index.html", indexPage{Error: msgInternal})
		return
	}

	if _, err := h.services.Users.Create(c.Request.Context(), sessionID(c), userForm); err != nil {
		page := indexPage{Name: userForm.Name, Email: userForm.Email}

		var verrs *validation.Errors
		if errors.As(err, &verrs) {
			page.Errors = verrs
		} else {
			page.Error = messageFor(err)
		}
		// The failure has been shown; clear it so the next visit starts idle
		if errors.Is(err, service.ErrSubmission) {
			h.services.Users.Submission(sessionID(c))
		}

		status := statusFor(err)
		if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
			h.log.Error().Err(err).Msg("Failed to create user")
		}
		c.HTML(status, "index.html", page)
		return
	}

	c.Redirect(http.StatusSeeOther, "/users")
}

// ToggleSelection handles POST /users/:id/selection
func (h *PageHandler) ToggleSelection(c *gin.Context) {
	selected, err := strconv.ParseBool(c.PostForm("selected"))
	if err != nil {
		c.String(http.StatusBadRequest, "selected must be true or false")
		return
	}

	// Unknown ids are a no-op
	err = h.services.Users.SetSelected(c.Request.Context(), sessionID(c), c.Param("id"), selected)
	if err != nil && !errors.Is(err, service.ErrUserNotFound) {
		h.log.Error().Err(err).Msg("Failed to update selection")
		c.String(http.StatusInternalServerError, msgInternal)
		return
	}

	c.Redirect(http.StatusSeeOther, "/users")
}
