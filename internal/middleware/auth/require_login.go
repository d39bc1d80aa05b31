package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/avoronov/todoapi/internal/logging"
	"github.com/avoronov/todoapi/internal/revocation"
	"github.com/avoronov/todoapi/internal/tokens"
)

type Auth struct {
	JWTSecret []byte
	Revoked   revocation.Store
}

// RequireLogin gates every protected route. The revocation lookup runs
// before signature verification so a blacklisted token is never honored,
// valid signature or not.
func (a *Auth) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := BearerToken(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusForbidden, "Access denied. Token missing!")
		}

		ctx := c.Request().Context()
		revoked, err := a.Revoked.IsRevoked(ctx, raw)
		if err != nil {
			logging.FromContext(ctx).Error("revocation check failed", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error!")
		}
		if revoked {
			return echo.NewHTTPError(http.StatusForbidden, "Token is blacklisted. Please log in again.")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, a.JWTSecret)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}

		setUserContext(c, claims)
		return next(c)
	}
}

func BearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
