package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/elastic/go-elasticsearch/v9"
	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avoronov/todoapi/internal/handlers"
	"github.com/avoronov/todoapi/internal/hash"
	authmw "github.com/avoronov/todoapi/internal/middleware/auth"
	"github.com/avoronov/todoapi/internal/models"
	"github.com/avoronov/todoapi/internal/mykafka"
	"github.com/avoronov/todoapi/internal/revocation"
	httpserver "github.com/avoronov/todoapi/internal/transport/http"
)

var (
	jwtSecret     = []byte("test-jwt-secret")
	refreshSecret = []byte("test-refresh-secret")
)

type testApp struct {
	e  *echo.Echo
	db *gorm.DB
	mr *miniredis.Miniredis
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithES(t, nil)
}

func newTestAppWithES(t *testing.T, esClient *elasticsearch.Client) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Todo{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := revocation.NewRedisStoreFromClient(rdb)

	auth := &authmw.Auth{JWTSecret: jwtSecret, Revoked: store}
	prod := &mykafka.Producer{}

	deps := httpserver.Deps{
		DB:   db,
		Auth: auth,
		AuthHandler: &handlers.AuthHandler{
			DB:            db,
			JWTSecret:     jwtSecret,
			RefreshSecret: refreshSecret,
			Revoked:       store,
			Producer:      prod,
		},
		TodoHandler:   &handlers.TodoHandler{DB: db, Producer: prod, Index: "todo"},
		SearchHandler: &handlers.SearchHandler{ES: esClient, Index: "todo"},
	}

	e := echo.New()
	httpserver.Register(e, &deps)

	return &testApp{e: e, db: db, mr: mr}
}

func (a *testApp) request(t *testing.T, method, path string, body interface{}, token string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func registerPayload(username string) map[string]string {
	return map[string]string{
		"name":     "Test User",
		"email":    username + "@example.com",
		"phone":    "1234567890",
		"username": username,
		"pass":     "secretpass123",
		"cpass":    "secretpass123",
	}
}

func (a *testApp) register(t *testing.T, username string) {
	t.Helper()

	rec := a.request(t, http.MethodPost, "/api/users/register", registerPayload(username), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (a *testApp) login(t *testing.T, username, pass string) (string, *http.Cookie) {
	t.Helper()

	rec := a.request(t, http.MethodPost, "/api/users/login", map[string]string{
		"username": username,
		"pass":     pass,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	token, _ := body["accessToken"].(string)
	require.NotEmpty(t, token)

	var refresh *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "refreshToken" {
			refresh = c
		}
	}
	require.NotNil(t, refresh, "refreshToken cookie must be set on login")

	return token, refresh
}

func (a *testApp) createAdmin(t *testing.T, username string) {
	t.Helper()

	pwHash, err := hash.HashPassword("secretpass123")
	require.NoError(t, err)
	user := models.User{
		Name:         "Admin",
		Email:        username + "@example.com",
		Phone:        "0",
		Username:     username,
		PasswordHash: pwHash,
		Role:         "admin",
	}
	require.NoError(t, a.db.Create(&user).Error)
}
