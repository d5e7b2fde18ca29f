package router // package router defines how HTTP routes are registered for the web pages

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/school-booking/internal/handler"
	"github.com/iliyamo/school-booking/internal/middleware"
)

// RegisterRoutes registers the routes that touch no session state.  The
// health check pings db; the manual is served through cache.
func RegisterRoutes(e *echo.Echo, db handler.Pinger, cache echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health(db))
	if cache == nil {
		e.GET("/manual", handler.Manual)
		return
	}
	e.GET("/manual", handler.Manual, cache)
}

// RegisterPublic registers the dashboard and the action controller.  The
// controller is public because anyone may create a reservation; it checks
// the admin flag itself for update and delete.  limiter, when set, guards
// the controller.
func RegisterPublic(e *echo.Echo, r *handler.ReservationHandler, limiter echo.MiddlewareFunc) {
	e.GET(handler.HomePath, r.Home)
	var mw []echo.MiddlewareFunc
	if limiter != nil {
		mw = append(mw, limiter)
	}
	e.GET("/admin", r.Action, mw...)
	e.POST("/admin", r.Action, mw...)
}

// RegisterAuth registers login and logout.  Only the credential check is
// rate limited.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limiter echo.MiddlewareFunc) {
	e.GET(handler.LoginPath, a.LoginForm)
	var mw []echo.MiddlewareFunc
	if limiter != nil {
		mw = append(mw, limiter)
	}
	e.POST(handler.LoginPath, a.Login, mw...)
	e.GET("/logout", a.Logout)
}

// RegisterAdmin registers the pages reserved to the administrator.
func RegisterAdmin(e *echo.Echo, r *handler.ReservationHandler) {
	e.GET("/editar", r.Edit, middleware.RequireAdmin(handler.LoginPath))
}
