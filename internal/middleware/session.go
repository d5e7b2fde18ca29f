package middleware // middleware provides shared request processing for handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/school-booking/internal/session"
)

// sessionKey is the echo context key holding the *session.Session.
const sessionKey = "session"

// Session loads the visitor's session before the handler runs.  A store
// failure is logged and the request continues with an empty session, which
// simply means "not an administrator".
func Session(m *session.Manager, logger *slog.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, err := m.Load(c.Request())
			if err != nil {
				logger.Error("session load failed", "err", err, "path", c.Path())
			}
			c.Set(sessionKey, s)
			return next(c)
		}
	}
}

// SessionFrom returns the session loaded by Session, or an empty one.
func SessionFrom(c echo.Context) *session.Session {
	if s, ok := c.Get(sessionKey).(*session.Session); ok && s != nil {
		return s
	}
	s := &session.Session{}
	c.Set(sessionKey, s)
	return s
}

// RequireAdmin lets administrator sessions through and redirects everyone
// else to loginPath.  It assumes Session ran earlier in the chain.
func RequireAdmin(loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !SessionFrom(c).IsAdmin() {
				return c.Redirect(http.StatusSeeOther, loginPath)
			}
			return next(c)
		}
	}
}
