package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/corkboard-dev/corkboard/db"
	"github.com/corkboard-dev/corkboard/internal/auth"
	"github.com/corkboard-dev/corkboard/internal/models"
	"github.com/corkboard-dev/corkboard/internal/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	auth.SetJWTSecretForTesting("test-secret")
}

// setupTest gives each test its own in-memory database behind the global
// handle and a fresh router.
func setupTest(t *testing.T) *gin.Engine {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"

	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, gormDB.AutoMigrate(
		&models.User{},
		&models.Board{},
		&models.BoardCollaborator{},
		&models.List{},
		&models.Card{},
	))

	db.DB = gormDB

	return router.NewRouter()
}

func postForm(r *gin.Engine, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postJSON(r *gin.Engine, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r *gin.Engine, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// registerAndLogin creates an account through the public flow and returns the
// session cookie.
func registerAndLogin(t *testing.T, r *gin.Engine, username, password string) *http.Cookie {
	t.Helper()

	w := postForm(r, "/register", url.Values{
		"username": {username},
		"password": {password},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/login", w.Header().Get("Location"))

	return login(t, r, username, password)
}

func login(t *testing.T, r *gin.Engine, username, password string) *http.Cookie {
	t.Helper()

	w := postForm(r, "/login", url.Values{
		"username": {username},
		"password": {password},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/dashboard", w.Header().Get("Location"))

	for _, c := range w.Result().Cookies() {
		if c.Name == "token" && c.Value != "" {
			return c
		}
	}

	t.Fatal("login did not set a session cookie")
	return nil
}

func decodeJSON(t *testing.T, body io.Reader, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(body).Decode(out))
}
