package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/school-booking/internal/view"
)

// Manual handles GET /manual.  The page is static, so it is safe behind the
// response cache.
func Manual(c echo.Context) error {
	return c.Render(http.StatusOK, view.PageManual, nil)
}
