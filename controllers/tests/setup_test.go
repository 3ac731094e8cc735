package controllers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"pickup/middleware"
	"pickup/models/postgres"
	"pickup/routes"
	"pickup/services/geocode"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestServer wires the real router against an isolated in-memory
// store. The geocoder is left unconfigured, as it is when no credential
// is set in the environment.
func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	return newTestServerWithGeocoder(t, nil)
}

func newTestServerWithGeocoder(t *testing.T, geocoder *geocode.Client) (*gin.Engine, *gorm.DB) {
	t.Setenv("KEY", "test-session-key")
	t.Setenv("JWT_SECRET", "test-jwt-secret")
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		postgres.Player{},
		postgres.Park{},
		postgres.FavoritePark{},
		postgres.Schedule{},
		postgres.EventSignup{},
		postgres.Message{}))

	router := gin.New()
	middleware.SetUpMiddleware(router)
	routes.SetupRoutes(router, db, geocoder)
	return router, db
}

func doRequest(router *gin.Engine, method, path string, form url.Values, token string) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// doRequestWithCookies is the session-cookie variant of doRequest, for
// the flows that only make sense with a live session (logout).
func doRequestWithCookies(router *gin.Engine, method, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	body := ""
	if form != nil {
		body = form.Encode()
	}
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// registerPlayer signs a player up through the API and returns the
// Bearer token from the response.
func registerPlayer(t *testing.T, router *gin.Engine, username, email, password string) string {
	w := doRequest(router, http.MethodPost, "/signup", url.Values{
		"username":         {username},
		"email":            {email},
		"password":         {password},
		"confirm_password": {password},
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, "signup %s: %s", username, w.Body.String())

	body := decodeBody(t, w)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}
