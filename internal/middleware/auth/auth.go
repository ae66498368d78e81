package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/cms_backend/internal/models"
	"github.com/Skotchmaster/cms_backend/internal/repository"
	"github.com/Skotchmaster/cms_backend/internal/response"
	"github.com/Skotchmaster/cms_backend/internal/token"
)

const userContextKey = "currentUser"

// CurrentUser returns the user stashed by RequireLogin, or nil outside of a
// protected route.
func CurrentUser(c echo.Context) *models.User {
	if u, ok := c.Get(userContextKey).(*models.User); ok {
		return u
	}
	return nil
}

// ResolveUser verifies raw with the expected kind and loads the subject from
// the user store. A token whose subject no longer exists fails with the same
// error as a bad token.
func ResolveUser(db *gorm.DB, tokens *token.Service, raw string, kind token.Kind) (*models.User, error) {
	claims, err := tokens.Verify(raw, kind, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if claims.UserID == 0 {
		return nil, token.ErrInvalidToken
	}

	user, err := repository.GetUserByID(db, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, token.ErrInvalidToken
	}
	return user, nil
}

type Middleware struct {
	DB     *gorm.DB
	Tokens *token.Service
}

// RequireLogin resolves the bearer access token into a user and stores it in
// the request context.
func (m *Middleware) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, ok := bearerToken(c)
		if !ok {
			return response.Unauthorized(c, "Could not validate credentials")
		}

		user, err := ResolveUser(m.DB, m.Tokens, raw, token.KindAccess)
		if err != nil {
			return unauthorized(c, err)
		}

		c.Set(userContextKey, user)
		return next(c)
	}
}

// RequireAdmin gates a route on the admin role. Must run after RequireLogin.
func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := CurrentUser(c)
		if user == nil {
			return response.Unauthorized(c, "Could not validate credentials")
		}
		if !user.IsAdmin() {
			return response.Forbidden(c)
		}
		return next(c)
	}
}

func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	raw := strings.TrimSpace(parts[1])
	return raw, raw != ""
}

// Unauthorized maps verifier errors onto the two client-visible messages.
func Unauthorized(c echo.Context, err error) error {
	return unauthorized(c, err)
}

func unauthorized(c echo.Context, err error) error {
	if errors.Is(err, token.ErrWrongKind) {
		return response.Unauthorized(c, "Invalid token type")
	}
	return response.Unauthorized(c, "Could not validate credentials")
}
