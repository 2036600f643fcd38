package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	httpHandlers "github.com/taskmaster/dayboard/internal/adapters/http"
	"github.com/taskmaster/dayboard/internal/ports"
)

// sessionMiddleware resolves the bearer token to the current user. The token
// is also attached to the request context so gateway calls run as that user.
func (s *Server) sessionMiddleware(sessions ports.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := httpHandlers.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing or malformed authorization header")
			}

			ctx := ports.WithAccessToken(c.Request().Context(), token)
			userID, ok := sessions.CurrentUserID(ctx, token)
			if !ok {
				s.logger.LogSecurityEvent("invalid_session", "", c.RealIP(), map[string]interface{}{
					"endpoint": c.Request().URL.Path,
				})
				return echo.NewHTTPError(http.StatusUnauthorized, "No active session")
			}

			c.SetRequest(c.Request().WithContext(ctx))
			c.Set(httpHandlers.ContextUserID, userID)

			s.logger.
				WithRequestID(c.Response().Header().Get(echo.HeaderXRequestID)).
				WithUserID(userID).
				Debugw("Session resolved", "path", c.Path())

			return next(c)
		}
	}
}

// metricsMiddleware records request counts and latencies
func (s *Server) metricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		timer := s.metrics.RequestDuration.WithLabelValues(c.Request().Method, c.Path())
		start := time.Now()

		err := next(c)

		status := c.Response().Status
		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
		}

		s.metrics.RequestsTotal.WithLabelValues(
			c.Request().Method,
			c.Path(),
			strconv.Itoa(status),
		).Inc()
		timer.Observe(time.Since(start).Seconds())

		return err
	}
}
