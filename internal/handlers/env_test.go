package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/cms_backend/internal/hash"
	authmw "github.com/Skotchmaster/cms_backend/internal/middleware/auth"
	"github.com/Skotchmaster/cms_backend/internal/models"
	"github.com/Skotchmaster/cms_backend/internal/service/search"
	"github.com/Skotchmaster/cms_backend/internal/storage"
	"github.com/Skotchmaster/cms_backend/internal/token"
)

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	DB     *gorm.DB
	Tokens *token.Service
	MW     *authmw.Middleware
	A      *AuthHandler
	C      *ContentHandler
	U      *UserHandler
	R      *RoleHandler
}

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Role{}, &models.User{}, &models.File{}, &models.Article{}))

	for _, name := range []string{"admin", "editor"} {
		require.NoError(t, db.Create(&models.Role{Name: name}).Error)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := initTestDB(t)
	tokens, err := token.NewService([]byte("test-secret"), "HS256", 30*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	env := &testEnv{
		T:      t,
		E:      echo.New(),
		DB:     db,
		Tokens: tokens,
		MW:     &authmw.Middleware{DB: db, Tokens: tokens},
	}
	env.A = &AuthHandler{DB: db, Tokens: tokens}
	env.C = &ContentHandler{DB: db, Store: store, Indexer: &search.Indexer{Index: "articles"}}
	env.U = &UserHandler{DB: db}
	env.R = &RoleHandler{DB: db}
	return env
}

func (env *testEnv) createUser(username, password, roleName string) *models.User {
	env.T.Helper()

	var role models.Role
	require.NoError(env.T, env.DB.Where("name = ?", roleName).First(&role).Error)

	pwHash, err := hash.HashPassword(password)
	require.NoError(env.T, err)

	user := models.User{
		Username:     username,
		Name:         username,
		PasswordHash: pwHash,
		RoleID:       role.ID,
		Role:         role,
	}
	require.NoError(env.T, env.DB.Create(&user).Error)
	return &user
}

func (env *testEnv) accessToken(user *models.User) string {
	env.T.Helper()
	raw, err := env.Tokens.Issue(user.ID, token.KindAccess, time.Now().UTC())
	require.NoError(env.T, err)
	return raw
}

// request builds an echo context. A non-nil user attaches a bearer access
// token for that user.
func (env *testEnv) request(method, path string, body io.Reader, contentType string, user *models.User, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if user != nil {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+env.accessToken(user))
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) doJSONRequest(method, path string, body any, user *models.User, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	env.T.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	return env.request(method, path, &buf, echo.MIMEApplicationJSON, user, cookies...)
}

// loggedIn wraps a handler with the identity middleware.
func (env *testEnv) loggedIn(h echo.HandlerFunc) echo.HandlerFunc {
	return env.MW.RequireLogin(h)
}

// adminOnly wraps a handler with the full identity + admin chain.
func (env *testEnv) adminOnly(h echo.HandlerFunc) echo.HandlerFunc {
	return env.MW.RequireLogin(env.MW.RequireAdmin(h))
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// multipartBody builds a multipart form with the given string fields and an
// optional file part.
func multipartBody(t *testing.T, fields map[string]string, fileField, fileName, fileType string, fileContent []byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+fileField+`"; filename="`+fileName+`"`)
		h.Set("Content-Type", fileType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(fileContent)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}
