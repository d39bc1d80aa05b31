package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// AdminOnly is chained after RequireLogin; the role comes from verified
// claims, so no store round trip is needed here.
func (a *Auth) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if Role(c) != "admin" {
			return echo.NewHTTPError(http.StatusForbidden, "Forbidden! You are not an administrator.")
		}
		return next(c)
	}
}
