package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/cms_backend/internal/models"
	"github.com/Skotchmaster/cms_backend/internal/token"
)

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Role{}, &models.User{}, &models.File{}, &models.Article{}))
	return db
}

func newTestMiddleware(t *testing.T) (*Middleware, *gorm.DB) {
	t.Helper()
	db := initTestDB(t)
	tokens, err := token.NewService([]byte("test-secret"), "HS256", 30*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	return &Middleware{DB: db, Tokens: tokens}, db
}

func createUser(t *testing.T, db *gorm.DB, username, roleName string) *models.User {
	t.Helper()
	role := models.Role{Name: roleName}
	require.NoError(t, db.Where("name = ?", roleName).FirstOrCreate(&role).Error)
	user := models.User{
		Username:     username,
		Name:         username,
		PasswordHash: "irrelevant",
		RoleID:       role.ID,
		Role:         role,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func doRequest(mw *Middleware, authorization string) (*httptest.ResponseRecorder, *models.User, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/content", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *models.User
	handler := mw.RequireLogin(func(c echo.Context) error {
		seen = CurrentUser(c)
		return c.NoContent(http.StatusOK)
	})
	err := handler(c)
	return rec, seen, err
}

func errMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "error", body["status"])
	msg, _ := body["message"].(string)
	return msg
}

func TestRequireLogin_ValidToken(t *testing.T) {
	mw, db := newTestMiddleware(t)
	user := createUser(t, db, "editor_user", "editor")

	raw, err := mw.Tokens.Issue(user.ID, token.KindAccess, time.Now().UTC())
	require.NoError(t, err)

	rec, seen, err := doRequest(mw, "Bearer "+raw)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	require.Equal(t, user.ID, seen.ID)
	require.Equal(t, "editor", seen.Role.Name)
}

func TestRequireLogin_MissingHeader(t *testing.T) {
	mw, _ := newTestMiddleware(t)

	rec, _, err := doRequest(mw, "")
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Could not validate credentials", errMessage(t, rec))
}

func TestRequireLogin_GarbageToken(t *testing.T) {
	mw, _ := newTestMiddleware(t)

	rec, _, err := doRequest(mw, "Bearer not-a-token")
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Could not validate credentials", errMessage(t, rec))
}

func TestRequireLogin_RefreshTokenRejected(t *testing.T) {
	mw, db := newTestMiddleware(t)
	user := createUser(t, db, "editor_user", "editor")

	raw, err := mw.Tokens.Issue(user.ID, token.KindRefresh, time.Now().UTC())
	require.NoError(t, err)

	rec, _, err := doRequest(mw, "Bearer "+raw)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid token type", errMessage(t, rec))
}

func TestRequireLogin_DeletedSubject(t *testing.T) {
	mw, db := newTestMiddleware(t)
	user := createUser(t, db, "gone_user", "editor")

	raw, err := mw.Tokens.Issue(user.ID, token.KindAccess, time.Now().UTC())
	require.NoError(t, err)

	require.NoError(t, db.Delete(&models.User{}, user.ID).Error)

	rec, _, err := doRequest(mw, "Bearer "+raw)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	// token-level and account-level failures are indistinguishable
	require.Equal(t, "Could not validate credentials", errMessage(t, rec))
}

func TestResolveUser_UnknownSubject(t *testing.T) {
	mw, _ := newTestMiddleware(t)

	raw, err := mw.Tokens.Issue(9999, token.KindAccess, time.Now().UTC())
	require.NoError(t, err)

	_, err = ResolveUser(mw.DB, mw.Tokens, raw, token.KindAccess)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestRequireAdmin(t *testing.T) {
	mw, db := newTestMiddleware(t)
	admin := createUser(t, db, "admin_user", "admin")
	editor := createUser(t, db, "editor_user", "editor")

	run := func(user *models.User) (*httptest.ResponseRecorder, error) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(userContextKey, user)

		handler := mw.RequireAdmin(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		return rec, handler(c)
	}

	rec, err := run(admin)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, err = run(editor)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Forbidden", errMessage(t, rec))

	// no resolved identity at all
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	handler := mw.RequireAdmin(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, handler(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
