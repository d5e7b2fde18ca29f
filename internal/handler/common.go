package handler // handler defines the HTTP handlers behind the web pages

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/school-booking/internal/middleware"
	"github.com/iliyamo/school-booking/internal/service"
	"github.com/iliyamo/school-booking/internal/session"
)

// requestTimeout bounds the storage work of a single request.
const requestTimeout = 5 * time.Second

// Paths the handlers redirect to.
const (
	HomePath  = "/"
	LoginPath = "/login"
)

func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// redirectWithFlash stores msg in the visitor's session and sends them to
// the dashboard.  A session store failure loses the message but not the
// redirect.
func redirectWithFlash(c echo.Context, m *session.Manager, logger *slog.Logger, msg string) error {
	s := middleware.SessionFrom(c)
	if err := m.SetFlash(c.Request().Context(), c.Response(), s, msg); err != nil {
		logger.Error("store flash failed", "err", err)
	}
	return c.Redirect(http.StatusSeeOther, HomePath)
}

// parseID reads a positive reservation id.  Anything else yields 0, which
// never matches a stored row.
func parseID(raw string) uint64 {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// postValue reads a field from the request body only.  Query parameters
// are ignored so a link cannot carry reservation data or ids.
func postValue(c echo.Context, name string) string {
	return c.Request().PostFormValue(name)
}

// formInput collects the reservation fields of a submitted form.  A
// non-numeric duration becomes 0 and is rejected by validation.
func formInput(c echo.Context) service.Input {
	dur, _ := strconv.Atoi(strings.TrimSpace(postValue(c, "duracion")))
	return service.Input{
		FirstName:       postValue(c, "nombre"),
		LastName:        postValue(c, "apellido"),
		DNI:             postValue(c, "dni"),
		Role:            postValue(c, "cargo"),
		Date:            postValue(c, "fecha"),
		Time:            postValue(c, "horario"),
		Space:           postValue(c, "espacio"),
		DurationMinutes: dur,
	}
}
