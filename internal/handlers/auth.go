package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/avoronov/todoapi/internal/hash"
	"github.com/avoronov/todoapi/internal/logging"
	authmw "github.com/avoronov/todoapi/internal/middleware/auth"
	"github.com/avoronov/todoapi/internal/models"
	"github.com/avoronov/todoapi/internal/mykafka"
	"github.com/avoronov/todoapi/internal/revocation"
	"github.com/avoronov/todoapi/internal/tokens"
)

type AuthHandler struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
	Revoked       revocation.Store
	Producer      *mykafka.Producer
}

func CreateCookie(name, value, path string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  exp,
		MaxAge:   int(time.Until(exp).Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

func DeleteCookie(name, path string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

func (h *AuthHandler) publish(c echo.Context, key string, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Producer.PublishEvent(ctx, "user_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "error", err)
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Username string `json:"username"`
		Pass     string `json:"pass"`
		Cpass    string `json:"cpass"`
	}

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if req.Pass != req.Cpass {
		return echo.NewHTTPError(http.StatusUnauthorized, "Passwords don't match")
	}

	pwHash, err := hash.HashPassword(req.Pass)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error while registering user!")
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Username:     req.Username,
		PasswordHash: pwHash,
		Role:         "user",
	}
	if err := h.DB.WithContext(ctx).Create(&user).Error; err != nil {
		// Uniqueness violation on username/email is the expected client
		// error; anything else is a store failure.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			l.Warn("register_failed", "username", req.Username, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Can't register")
		}
		l.Error("register_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error while registering user!")
	}

	h.publish(c, fmt.Sprint(user.ID), map[string]interface{}{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": user.Username,
	})

	l.Info("user_registered", "user_id", user.ID)
	return c.JSON(http.StatusCreated, echo.Map{"message": "User registered successfully!"})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Username string `json:"username"`
		Pass     string `json:"pass"`
	}

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var user models.User
	if err := h.DB.WithContext(ctx).Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "User not found!")
		}
		l.Error("login_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error while logging in!")
	}

	if !hash.CheckPassword(user.PasswordHash, req.Pass) {
		return echo.NewHTTPError(http.StatusForbidden, "Invalid credentials!")
	}

	accessToken, _, err := tokens.SignAccessToken(user.ID, user.Username, user.Role, h.JWTSecret)
	if err != nil {
		l.Error("login_error", "reason", "cannot sign access token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error while logging in!")
	}

	refreshToken, refreshExp, err := tokens.SignRefreshToken(user.ID, user.Username, user.Role, h.RefreshSecret)
	if err != nil {
		l.Error("login_error", "reason", "cannot sign refresh token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error while logging in!")
	}

	// Refresh token travels only in the cookie, never in the body.
	c.SetCookie(CreateCookie("refreshToken", refreshToken, "/", refreshExp))

	h.publish(c, fmt.Sprint(user.ID), map[string]interface{}{
		"type":     "user_logged_in",
		"user_id":  user.ID,
		"username": user.Username,
	})

	l.Info("login_successful", "user_id", user.ID)
	return c.JSON(http.StatusCreated, echo.Map{"accessToken": accessToken})
}

func (h *AuthHandler) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	var storeErr error
	if raw := authmw.BearerToken(c); raw != "" {
		// Decode without expiry validation: logout must work moments
		// before natural expiry. TTL is the token's remaining lifetime.
		if claims, err := tokens.ExpiredAccessClaims(raw, h.JWTSecret); err == nil && claims.ExpiresAt != nil {
			remaining := time.Until(claims.ExpiresAt.Time)
			if remaining < 0 {
				remaining = 0
			}
			if err := h.Revoked.Revoke(ctx, raw, remaining); err != nil {
				l.Error("logout_error", "reason", "cannot revoke access token", "error", err)
				storeErr = err
			}
		}
	}

	// Revoking the refresh token too closes the reuse-after-logout hole;
	// the refresh handler checks the blacklist before verifying.
	if cookie, err := c.Cookie("refreshToken"); err == nil && cookie.Value != "" {
		if claims, err := tokens.ExpiredRefreshClaims(cookie.Value, h.RefreshSecret); err == nil && claims.ExpiresAt != nil {
			remaining := time.Until(claims.ExpiresAt.Time)
			if remaining < 0 {
				remaining = 0
			}
			if err := h.Revoked.Revoke(ctx, cookie.Value, remaining); err != nil {
				l.Warn("logout_warning", "reason", "cannot revoke refresh token", "error", err)
			}
		}
	}

	c.SetCookie(DeleteCookie("refreshToken", "/"))

	if storeErr != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error during logout.")
	}

	l.Info("logout_successful", "user_id", authmw.UserID(c))
	return c.JSON(http.StatusOK, echo.Map{"message": "Successfully logged out."})
}

func (h *AuthHandler) RefreshToken(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	cookie, err := c.Cookie("refreshToken")
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusForbidden, "Refresh token missing!")
	}

	revoked, err := h.Revoked.IsRevoked(ctx, cookie.Value)
	if err != nil {
		l.Error("refresh_error", "reason", "revocation check failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error!")
	}
	if revoked {
		return echo.NewHTTPError(http.StatusForbidden, "Invalid or expired refresh token!")
	}

	claims, err := tokens.RefreshClaimsFromToken(cookie.Value, h.RefreshSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "Invalid or expired refresh token!")
	}

	accessToken, _, err := tokens.SignAccessToken(claims.UserID, claims.Username, claims.Role, h.JWTSecret)
	if err != nil {
		l.Error("refresh_error", "reason", "cannot sign access token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error!")
	}

	return c.JSON(http.StatusOK, echo.Map{"accessToken": accessToken})
}

func (h *AuthHandler) GetAllUsers(c echo.Context) error {
	ctx := c.Request().Context()

	var users []models.User
	if err := h.DB.WithContext(ctx).Find(&users).Error; err != nil {
		logging.FromContext(ctx).Error("get_all_users_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error!")
	}
	if len(users) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "No users found")
	}

	return c.JSON(http.StatusOK, users)
}

func (h *AuthHandler) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	userID := authmw.UserID(c)

	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found!")
		}
		logging.FromContext(ctx).Error("profile_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error!")
	}

	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_delete")
	userID := authmw.UserID(c)

	result := h.DB.WithContext(ctx).Delete(&models.User{}, userID)
	if result.Error != nil {
		l.Error("delete_error", "error", result.Error)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error!")
	}
	if result.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "No such user")
	}

	h.publish(c, fmt.Sprint(userID), map[string]interface{}{
		"type":    "user_deleted",
		"user_id": userID,
	})

	l.Info("user_deleted", "user_id", userID)
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully!"})
}
