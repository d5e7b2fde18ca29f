package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/school-booking/internal/auth"
	"github.com/iliyamo/school-booking/internal/middleware"
	"github.com/iliyamo/school-booking/internal/session"
	"github.com/iliyamo/school-booking/internal/view"
)

// MsgBadCredentials is shown for any failed login; it never says which of
// the two fields was wrong.
const MsgBadCredentials = "Usuario o contraseña incorrectos."

// AuthHandler bundles dependencies for the login and logout endpoints.
type AuthHandler struct {
	Admin    auth.Credential
	Sessions *session.Manager
	Logger   *slog.Logger
}

// NewAuthHandler panics if sessions is nil.
func NewAuthHandler(admin auth.Credential, sessions *session.Manager, logger *slog.Logger) *AuthHandler {
	if sessions == nil {
		panic("nil session manager passed to NewAuthHandler")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AuthHandler{Admin: admin, Sessions: sessions, Logger: logger}
}

// LoginForm handles GET /login.  An administrator who is already logged in
// goes straight to the dashboard.
func (h *AuthHandler) LoginForm(c echo.Context) error {
	if middleware.SessionFrom(c).IsAdmin() {
		return c.Redirect(http.StatusSeeOther, HomePath)
	}
	return c.Render(http.StatusOK, view.PageLogin, view.LoginData{})
}

// Login handles POST /login.  On success the session gets a new id before
// the admin flag is stored in it.
func (h *AuthHandler) Login(c echo.Context) error {
	user := strings.TrimSpace(c.FormValue("usuario"))
	pass := c.FormValue("contrasenia")

	if !h.Admin.Verify(user, pass) {
		h.Logger.Info("admin login failed", "ip", c.RealIP())
		return c.Render(http.StatusUnauthorized, view.PageLogin, view.LoginData{User: user, Message: MsgBadCredentials})
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	s := middleware.SessionFrom(c)
	s.Admin = true
	if err := h.Sessions.Regenerate(ctx, c.Response(), s); err != nil {
		h.Logger.Error("regenerate session failed", "err", err)
		s.Admin = false
		return c.Render(http.StatusServiceUnavailable, view.PageLogin, view.LoginData{User: user, Message: MsgStorageFailure})
	}
	h.Logger.Info("admin logged in", "ip", c.RealIP())
	return c.Redirect(http.StatusSeeOther, HomePath)
}

// Logout handles GET /logout.  The session is destroyed even when it was
// never an administrator's.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.Sessions.Destroy(ctx, c.Response(), middleware.SessionFrom(c)); err != nil {
		h.Logger.Error("destroy session failed", "err", err)
	}
	return c.Redirect(http.StatusSeeOther, HomePath)
}
