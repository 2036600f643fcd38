package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/taskmaster/dayboard/docs"
	httpHandlers "github.com/taskmaster/dayboard/internal/adapters/http"
	"github.com/taskmaster/dayboard/internal/application/services"
	"github.com/taskmaster/dayboard/internal/domain/entities"
	"github.com/taskmaster/dayboard/internal/infrastructure/config"
	"github.com/taskmaster/dayboard/internal/infrastructure/database"
	"github.com/taskmaster/dayboard/internal/infrastructure/logger"
	"github.com/taskmaster/dayboard/internal/infrastructure/metrics"
	"github.com/taskmaster/dayboard/internal/ports"
)

// Server represents the HTTP server
type Server struct {
	echo    *echo.Echo
	config  *config.Config
	logger  *logger.Logger
	metrics *metrics.Metrics
	db      *database.DB
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new server instance. db is only set for the postgres
// backend and is used for health checks.
func New(cfg *config.Config, backend ports.Backend, db *database.DB, appLogger *logger.Logger) (*Server, error) {
	if backend == nil {
		return nil, errors.New("server: backend is required")
	}

	e := echo.New()
	e.Validator = &CustomValidator{validator: entities.Validator()}
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.App.IsDevelopment()
	e.HTTPErrorHandler = customErrorHandler(appLogger, e.Debug)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	// Initialize services
	noteService := services.NewNoteService(backend, appLogger, m)
	taskService := services.NewTaskService(backend, appLogger, m)
	sessionService := services.NewSessionService(backend, appLogger)

	// Initialize handlers
	authHandler := httpHandlers.NewAuthHandler(sessionService, appLogger)
	noteHandler := httpHandlers.NewNoteHandler(noteService, appLogger)
	taskHandler := httpHandlers.NewTaskHandler(taskService, appLogger)
	dashboardHandler := httpHandlers.NewDashboardHandler(noteService, taskService, appLogger)
	calendarHandler := httpHandlers.NewCalendarHandler(appLogger)

	server := &Server{
		echo:    e,
		config:  cfg,
		logger:  appLogger,
		metrics: m,
		db:      db,
	}

	server.setupMiddleware()

	if m != nil {
		server.setupMetrics()
	}

	server.setupRoutes(authHandler, noteHandler, taskHandler, dashboardHandler, calendarHandler, sessionService)

	return server, nil
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			reqLogger := s.logger.WithRequestID(values.RequestID)
			fields := []interface{}{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
				"user_agent", values.UserAgent,
			}

			if values.Error != nil {
				reqLogger.WithError(values.Error).Errorw("HTTP request failed", fields...)
			} else {
				reqLogger.Infow("HTTP request", fields...)
			}

			return nil
		},
	}))

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(s.config.Security.CORSAllowedOrigins, ","),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
	}))

	if s.config.Security.RateLimitRequests > 0 {
		perSecond := rate.Limit(s.config.Security.RateLimitRequests)
		if window := s.config.Security.RateLimitWindow; window > 0 {
			perSecond = rate.Limit(float64(s.config.Security.RateLimitRequests) / window.Seconds())
		}
		s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(
				middleware.RateLimiterMemoryStoreConfig{
					Rate:      perSecond,
					Burst:     s.config.Security.RateLimitRequests,
					ExpiresIn: s.config.Security.RateLimitWindow,
				},
			),
			IdentifierExtractor: func(ctx echo.Context) (string, error) {
				return ctx.RealIP(), nil
			},
			ErrorHandler: func(context echo.Context, err error) error {
				return context.JSON(http.StatusForbidden, ports.MessageResponse{Message: "rate limit exceeded"})
			},
			DenyHandler: func(context echo.Context, identifier string, err error) error {
				return context.JSON(http.StatusTooManyRequests, ports.MessageResponse{Message: "rate limit exceeded"})
			},
		}))
	}

	secureConfig := middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
	}
	if s.config.App.IsProduction() {
		secureConfig.HSTSMaxAge = 31536000
	}
	s.echo.Use(middleware.SecureWithConfig(secureConfig))

	if s.config.Server.RequestTimeout > 0 {
		s.echo.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
			Timeout: s.config.Server.RequestTimeout,
		}))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(
	authHandler *httpHandlers.AuthHandler,
	noteHandler *httpHandlers.NoteHandler,
	taskHandler *httpHandlers.TaskHandler,
	dashboardHandler *httpHandlers.DashboardHandler,
	calendarHandler *httpHandlers.CalendarHandler,
	sessions ports.SessionService,
) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// API documentation
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := s.echo.Group("/api/v1")

	// Auth routes (public)
	authGroup := v1.Group("/auth")
	authGroup.POST("/signin", authHandler.SignIn)
	authGroup.POST("/signup", authHandler.SignUp)

	requireSession := s.sessionMiddleware(sessions)

	noteGroup := v1.Group("/notes", requireSession)
	noteGroup.GET("", noteHandler.ListNotes)
	noteGroup.GET("/recent", noteHandler.RecentNotes)

	taskGroup := v1.Group("/tasks", requireSession)
	taskGroup.GET("", taskHandler.ListTasks)
	taskGroup.PUT("/:id/status", taskHandler.UpdateTaskStatus)
	taskGroup.POST("/:id/cycle", taskHandler.CycleTask)

	v1.GET("/dashboard", dashboardHandler.GetDashboard, requireSession)
	v1.POST("/calendar/validate", calendarHandler.ValidateEvent, requireSession)
}

// setupMetrics exposes Prometheus metrics and instruments every request
func (s *Server) setupMetrics() {
	s.echo.Use(s.metricsMiddleware)
	s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": s.config.Store.Backend,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) readinessCheck(c echo.Context) error {
	if s.db != nil {
		if err := s.db.HealthCheck(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status": "not_ready",
				"reason": "database_not_ready",
				"stats":  s.db.GetConnectionInfo(),
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Handler returns the underlying HTTP handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Infow("Starting server", "address", address)

	srv := &http.Server{
		Addr:         address,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}
	return s.echo.StartServer(srv)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infow("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler handles HTTP errors. In debug mode server errors carry
// the underlying error in details.
func customErrorHandler(logger *logger.Logger, debug bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  interface{}
		)

		var (
			he        *echo.HTTPError
			verr      *entities.ValidationError
			fieldErrs validator.ValidationErrors
		)
		switch {
		case errors.As(err, &he):
			code = he.Code
			msg = ports.ErrorResponse{Message: fmt.Sprint(he.Message)}
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		case errors.As(err, &verr):
			code = http.StatusUnprocessableEntity
			msg = map[string]interface{}{"message": "validation failed", "issues": verr.Issues}
		case errors.As(err, &fieldErrs):
			code = http.StatusBadRequest
			msg = ports.ErrorResponse{
				Message: "validation failed",
				Details: map[string]interface{}{"fields": fieldErrs.Error()},
			}
		default:
			msg = ports.ErrorResponse{Message: http.StatusText(code)}
		}

		if code >= http.StatusInternalServerError {
			logger.WithError(err).Errorw("Server error", "status", code, "path", c.Request().URL.Path)
			if resp, ok := msg.(ports.ErrorResponse); ok && debug {
				resp.Details = map[string]interface{}{"error": err.Error()}
				msg = resp
			}
		}

		if !c.Response().Committed {
			if c.Request().Method == http.MethodHead {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, msg)
			}
			if err != nil {
				logger.Errorw("Error sending response", "error", err)
			}
		}
	}
}
