package api

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/user-directory-api/internal/config"
	"github.com/user-directory-api/internal/service"
	"github.com/user-directory-api/pkg/logger"
)

//go:embed templates
var templateFiles embed.FS

// HealthCheck reports whether a dependency is usable
type HealthCheck func(ctx context.Context) error

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger, checks ...HealthCheck) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.SetHTMLTemplate(parseTemplates())

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	pageHandler := NewPageHandler(services, cfg, log)
	userHandler := NewUserHandler(services, log)
	importHandler := NewImportHandler(services, cfg, log)
	exportHandler := NewExportHandler(services, log)

	// Health check
	router.GET("/health", healthCheck(checks, log))

	// Browser pages
	pages := router.Group("/", sessionMiddleware(cfg.Server.SecureCookies))
	{
		pages.GET("", pageHandler.Index)
		pages.GET("users", pageHandler.ListUsers)
		pages.POST("users", pageHandler.CreateUser)
		pages.POST("users/:id/selection", pageHandler.ToggleSelection)
		pages.POST("imports", importHandler.ImportForm)
		pages.GET("exports", exportHandler.Download)
	}

	// API v1
	v1 := router.Group("/v1", sessionMiddleware(cfg.Server.SecureCookies))
	{
		users := v1.Group("/users")
		{
			users.GET("", userHandler.List)
			users.POST("", userHandler.Create)
			users.PUT("/:id", userHandler.Update)
			users.PATCH("/:id/selection", userHandler.SetSelection)
		}

		v1.POST("/imports", importHandler.Import)
		v1.GET("/exports", exportHandler.Download)
		v1.GET("/submission", userHandler.Submission)
	}

	return router
}

func parseTemplates() *template.Template {
	funcs := template.FuncMap{
		"photoURL": photoURL,
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFiles, "templates/*.html"))
}

// photoURL lets image data URIs and http(s) URLs through html/template's URL filter
func photoURL(s string) template.URL {
	switch {
	case strings.HasPrefix(s, "data:image/"),
		strings.HasPrefix(s, "https://"),
		strings.HasPrefix(s, "http://"):
		return template.URL(s)
	default:
		return ""
	}
}

// healthCheck returns the health status
func healthCheck(checks []HealthCheck, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, code := "healthy", http.StatusOK
		for _, check := range checks {
			if err := check(ctx); err != nil {
				log.Error().Err(err).Msg("Health check failed")
				status, code = "unhealthy", http.StatusServiceUnavailable
				break
			}
		}

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   logger.ServiceName,
		})
	}
}
