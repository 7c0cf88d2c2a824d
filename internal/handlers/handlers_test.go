package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"ripple/internal/db"
	"ripple/internal/router"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newServer spins up the full router over an in-memory database.
func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(gdb))

	r := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("ripple_session", store))
	r.HTMLRender = router.LoadTemplates("../../web/templates")
	router.Register(r, gdb)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// register creates an account through the form endpoint and returns a
// client holding its session cookie.
func register(t *testing.T, srv *httptest.Server, username string) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	resp, err := client.PostForm(srv.URL+"/register", url.Values{
		"username":     {username},
		"email":        {username + "@example.com"},
		"password":     {"secret123"},
		"confirmation": {"secret123"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	// Redirect to the front page was followed
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return client
}

// anonClient does not follow redirects so tests can assert on them.
func anonClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// doJSON issues a request and decodes the JSON response, if any.
func doJSON(t *testing.T, client *http.Client, method, rawURL string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, rawURL, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	_ = json.Unmarshal(data, &out)
	return resp.StatusCode, out
}

// newPost creates a post through the API and returns its serialized view.
func newPost(t *testing.T, client *http.Client, srv *httptest.Server, content string) map[string]any {
	t.Helper()
	code, view := doJSON(t, client, http.MethodPost, srv.URL+"/new_post", map[string]string{"post": content})
	require.Equal(t, http.StatusCreated, code)
	return view
}
