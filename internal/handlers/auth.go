package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/cms_backend/internal/hash"
	"github.com/Skotchmaster/cms_backend/internal/logging"
	authmw "github.com/Skotchmaster/cms_backend/internal/middleware/auth"
	"github.com/Skotchmaster/cms_backend/internal/models"
	"github.com/Skotchmaster/cms_backend/internal/mykafka"
	"github.com/Skotchmaster/cms_backend/internal/repository"
	"github.com/Skotchmaster/cms_backend/internal/response"
	"github.com/Skotchmaster/cms_backend/internal/token"
)

const RefreshCookieName = "refresh_token"

type AuthHandler struct {
	DB       *gorm.DB
	Tokens   *token.Service
	Producer *mykafka.Producer
}

func CreateCookie(name, value, path string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, value string) {
	c.SetCookie(CreateCookie(RefreshCookieName, value, "/", int(h.Tokens.RefreshTTL().Seconds())))
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// authenticate implements the uniform credential check: unknown username and
// wrong password are indistinguishable to the caller.
func (h *AuthHandler) authenticate(username, password string) (*models.User, error) {
	user, err := repository.GetUserByUsername(h.DB, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !hash.CheckPassword(user.PasswordHash, password) {
		return nil, nil
	}
	return user, nil
}

func (h *AuthHandler) issuePair(userID uint) (access, refresh string, err error) {
	now := time.Now().UTC()
	access, err = h.Tokens.Issue(userID, token.KindAccess, now)
	if err != nil {
		return "", "", err
	}
	refresh, err = h.Tokens.Issue(userID, token.KindRefresh, now)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid credentials")
	}

	user, err := h.authenticate(req.Username, req.Password)
	if err != nil {
		return response.InternalServerError(c)
	}
	if user == nil {
		return response.BadRequest(c, "Invalid credentials")
	}

	access, refresh, err := h.issuePair(user.ID)
	if err != nil {
		return response.InternalServerError(c)
	}
	h.setRefreshCookie(c, refresh)

	h.publish(c, "user_events", map[string]any{
		"type":     "user_logged_in",
		"user_id":  user.ID,
		"username": user.Username,
	})

	return response.OK(c, "Login successful", echo.Map{
		"access_token": access,
		"token_type":   "Bearer",
	})
}

// Token is the OAuth2 password-style endpoint: form credentials in, a bare
// access token out, no refresh cookie.
func (h *AuthHandler) Token(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	user, err := h.authenticate(username, password)
	if err != nil {
		return response.InternalServerError(c)
	}
	if user == nil {
		return response.BadRequest(c, "Invalid credentials")
	}

	access, err := h.Tokens.Issue(user.ID, token.KindAccess, time.Now().UTC())
	if err != nil {
		return response.InternalServerError(c)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"access_token": access,
		"token_type":   "Bearer",
	})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(RefreshCookieName)
	if err != nil || cookie.Value == "" {
		return response.Unauthorized(c, "Refresh token missing.")
	}

	user, err := authmw.ResolveUser(h.DB, h.Tokens, cookie.Value, token.KindRefresh)
	if err != nil {
		return authmw.Unauthorized(c, err)
	}

	access, refresh, err := h.issuePair(user.ID)
	if err != nil {
		return response.InternalServerError(c)
	}
	h.setRefreshCookie(c, refresh)

	return response.OK(c, "Token refreshed", echo.Map{
		"access_token": access,
		"token_type":   "Bearer",
	})
}

// Logout drops the refresh cookie. Issued tokens stay valid until they
// expire: validity is derived from the signed payload only.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(CreateCookie(RefreshCookieName, "", "/", -1))
	return response.OK(c, "Logout successful", nil)
}

func (h *AuthHandler) publish(c echo.Context, topic string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, topic, fmt.Sprint(event["user_id"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish", "error", err)
	}
}
