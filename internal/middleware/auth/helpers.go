package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/avoronov/todoapi/internal/tokens"
)

const (
	ctxUserID   = "userID"
	ctxUsername = "username"
	ctxRole     = "role"
)

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxUsername, claims.Username)
	c.Set(ctxRole, claims.Role)
}

func UserID(c echo.Context) uint {
	id, _ := c.Get(ctxUserID).(uint)
	return id
}

func Username(c echo.Context) string {
	name, _ := c.Get(ctxUsername).(string)
	return name
}

func Role(c echo.Context) string {
	role, _ := c.Get(ctxRole).(string)
	return role
}
