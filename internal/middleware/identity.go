package middleware

// identity.go defines helpers shared across middleware files. visitorID
// names the current visitor for rate-limit keys: the session id when one
// exists, "guest" otherwise.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/school-booking/internal/session"
)

func visitorID(c echo.Context) string {
	if s, ok := c.Get(sessionKey).(*session.Session); ok && s != nil && s.ID != "" {
		return s.ID
	}
	return "guest"
}
