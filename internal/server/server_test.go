package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/bloglist/internal/config"
	"github.com/sakif/bloglist/internal/model"
	"github.com/sakif/bloglist/internal/repository/sqlite"
)

// initialBlogs is the fixture loaded before every scenario.
var initialBlogs = []map[string]any{
	{"title": "React patterns", "author": "Michael Chan", "url": "https://reactpatterns.com/", "likes": 7},
	{"title": "Go To Statement Considered Harmful", "author": "Edsger W. Dijkstra",
		"url": "http://www.u.arizona.edu/~rubinson/copyright_violations/Go_To_Considered_Harmful.html", "likes": 5},
}

type testApp struct {
	t     *testing.T
	srv   *Server
	token string
}

func newTestConfig() *config.Config {
	cfg := config.Defaults(config.EnvTest)
	cfg.JWTSecret = "bloglist-test-secret-0123"
	cfg.TemplateDir = "../../web/templates"
	cfg.StaticDir = "../../web/static"
	return cfg
}

// newTestApp starts a server on an in-memory database with one user
// (root/sekret) who owns the initial blogs.
func newTestApp(t *testing.T, mutate ...func(*config.Config)) *testApp {
	t.Helper()

	cfg := newTestConfig()
	for _, m := range mutate {
		m(cfg)
	}

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)

	srv, err := NewWithStore(cfg, db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	app := &testApp{t: t, srv: srv}
	app.register("root", "Superuser", "sekret")
	app.token = app.login("root", "sekret")
	for _, b := range initialBlogs {
		rr := app.do(http.MethodPost, "/api/blogs", app.token, b)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}
	return app
}

func (a *testApp) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.srv.ServeHTTP(rr, req)
	return rr
}

func (a *testApp) register(username, name, password string) {
	a.t.Helper()
	rr := a.do(http.MethodPost, "/api/users", "", map[string]string{
		"username": username, "name": name, "password": password,
	})
	require.Equal(a.t, http.StatusCreated, rr.Code, rr.Body.String())
}

func (a *testApp) login(username, password string) string {
	a.t.Helper()
	rr := a.do(http.MethodPost, "/api/login", "", map[string]string{"username": username, "password": password})
	require.Equal(a.t, http.StatusOK, rr.Code, rr.Body.String())
	var res struct {
		Token string `json:"token"`
	}
	require.NoError(a.t, json.NewDecoder(rr.Body).Decode(&res))
	return res.Token
}

func (a *testApp) blogs() []model.Blog {
	a.t.Helper()
	rr := a.do(http.MethodGet, "/api/blogs", "", nil)
	require.Equal(a.t, http.StatusOK, rr.Code)
	var blogs []model.Blog
	require.NoError(a.t, json.NewDecoder(rr.Body).Decode(&blogs))
	return blogs
}

// =========================================================================
// GET /api/blogs
// =========================================================================

func TestBlogs_ReturnedAsJSON(t *testing.T) {
	app := newTestApp(t)

	rr := app.do(http.MethodGet, "/api/blogs", "", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
}

func TestBlogs_AllReturnedWithIDs(t *testing.T) {
	app := newTestApp(t)

	blogs := app.blogs()
	require.Len(t, blogs, len(initialBlogs))
	for _, b := range blogs {
		assert.NotEmpty(t, b.ID)
		require.NotNil(t, b.Creator)
		assert.Equal(t, "root", b.Creator.Username)
	}
	assert.Equal(t, "React patterns", blogs[0].Title)
}

func TestBlogs_GetByID(t *testing.T) {
	app := newTestApp(t)
	first := app.blogs()[0]

	rr := app.do(http.MethodGet, "/api/blogs/"+first.ID, "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = app.do(http.MethodGet, "/api/blogs/doesnotexist", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// =========================================================================
// POST /api/blogs
// =========================================================================

func TestCreate_AddsOneBlog(t *testing.T) {
	app := newTestApp(t)

	rr := app.do(http.MethodPost, "/api/blogs", app.token, map[string]any{
		"title": "Hello World", "author": "Jose", "url": "Test", "likes": 3,
	})

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	blogs := app.blogs()
	assert.Len(t, blogs, len(initialBlogs)+1)
	titles := make([]string, 0, len(blogs))
	for _, b := range blogs {
		titles = append(titles, b.Title)
	}
	assert.Contains(t, titles, "Hello World")
}

func TestCreate_LikesDefaultToZero(t *testing.T) {
	app := newTestApp(t)

	rr := app.do(http.MethodPost, "/api/blogs", app.token, map[string]any{
		"title": "Hello World", "author": "Jose", "url": "Test",
	})

	require.Equal(t, http.StatusCreated, rr.Code)
	var got map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, float64(0), got["likes"])
}

func TestCreate_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		token  func(a *testApp) string
		body   map[string]any
		status int
	}{
		{"without title", func(a *testApp) string { return a.token },
			map[string]any{"author": "Jose", "url": "Test"}, http.StatusBadRequest},
		{"without url", func(a *testApp) string { return a.token },
			map[string]any{"title": "Hello World", "author": "Jose", "likes": 3}, http.StatusBadRequest},
		{"without token", func(a *testApp) string { return "" },
			map[string]any{"title": "Hello World", "url": "Test"}, http.StatusUnauthorized},
		{"with bad token", func(a *testApp) string { return "not.a.token" },
			map[string]any{"title": "Hello World", "url": "Test"}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)

			rr := app.do(http.MethodPost, "/api/blogs", tt.token(app), tt.body)

			assert.Equal(t, tt.status, rr.Code)
			var body map[string]any
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.NotEmpty(t, body["message"])
			assert.Len(t, app.blogs(), len(initialBlogs), "count must be unchanged")
		})
	}
}

// =========================================================================
// PUT / DELETE /api/blogs/{id}
// =========================================================================

func TestUpdate_LikesOnly(t *testing.T) {
	app := newTestApp(t)
	first := app.blogs()[0]

	rr := app.do(http.MethodPut, "/api/blogs/"+first.ID, "", map[string]any{"likes": first.Likes + 1})

	require.Equal(t, http.StatusOK, rr.Code)
	var got model.Blog
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, first.Likes+1, got.Likes)
	assert.Equal(t, first.Title, got.Title)
	assert.Equal(t, first.URL, got.URL)

	// the list must reflect the write, not a cached copy
	assert.Equal(t, first.Likes+1, app.blogs()[0].Likes)
}

func TestUpdate_InvalidAndMissing(t *testing.T) {
	app := newTestApp(t)
	first := app.blogs()[0]

	rr := app.do(http.MethodPut, "/api/blogs/"+first.ID, "", map[string]any{"likes": -1})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = app.do(http.MethodPut, "/api/blogs/doesnotexist", "", map[string]any{"likes": 1})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDelete(t *testing.T) {
	app := newTestApp(t)
	app.register("hellas", "Arto Hellas", "salainen")
	otherToken := app.login("hellas", "salainen")
	target := app.blogs()[0]

	rr := app.do(http.MethodDelete, "/api/blogs/"+target.ID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = app.do(http.MethodDelete, "/api/blogs/"+target.ID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Len(t, app.blogs(), len(initialBlogs))

	rr = app.do(http.MethodDelete, "/api/blogs/doesnotexist", app.token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = app.do(http.MethodDelete, "/api/blogs/"+target.ID, app.token, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Len(t, app.blogs(), len(initialBlogs)-1)
}

// =========================================================================
// LOGIN / USERS
// =========================================================================

func TestLogin(t *testing.T) {
	app := newTestApp(t)

	rr := app.do(http.MethodPost, "/api/login", "", map[string]string{"username": "root", "password": "sekret"})
	require.Equal(t, http.StatusOK, rr.Code)
	var ok map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&ok))
	assert.NotEmpty(t, ok["token"])
	assert.Equal(t, "root", ok["username"])
	assert.Equal(t, "Superuser", ok["name"])

	rr = app.do(http.MethodPost, "/api/login", "", map[string]string{"username": "root", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	var bad map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&bad))
	assert.NotContains(t, bad, "token")
}

func TestUsers(t *testing.T) {
	app := newTestApp(t)

	rr := app.do(http.MethodPost, "/api/users", "", map[string]string{"username": "root", "password": "another"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unique")

	rr = app.do(http.MethodGet, "/api/users", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "password")

	var users []model.User
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&users))
	require.Len(t, users, 1)
	assert.Len(t, users[0].Blogs, len(initialBlogs))
}

// =========================================================================
// OPERATIONAL ROUTES
// =========================================================================

func TestTestingReset(t *testing.T) {
	app := newTestApp(t)
	require.Len(t, app.blogs(), len(initialBlogs)) // warms the list cache

	rr := app.do(http.MethodPost, "/api/testing/reset", "", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, app.blogs())
}

func TestTestingReset_NotMountedOutsideTest(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) { c.Environment = config.EnvDevelopment })

	rr := app.do(http.MethodPost, "/api/testing/reset", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Len(t, app.blogs(), len(initialBlogs))
}

func TestHealthIndexAndStatic(t *testing.T) {
	app := newTestApp(t)

	rr := app.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = app.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/static/app.js")

	rr = app.do(http.MethodGet, "/static/app.js", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "loggedBloglistUser")
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) { c.MetricsEnabled = true })
	app.blogs()

	rr := app.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.True(t, strings.Contains(body, "bloglist_server_blogs_created_total 2"), body)
	assert.Contains(t, body, "bloglist_server_requests_total")
	assert.Contains(t, body, `bloglist_server_logins_total{result="success"} 1`)
}

func TestMetricsDisabled(t *testing.T) {
	app := newTestApp(t)

	rr := app.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRoutesDocumented(t *testing.T) {
	app := newTestApp(t)

	var patterns []string
	for _, r := range app.srv.Router().Routes() {
		patterns = append(patterns, r.Pattern)
	}
	assert.Contains(t, patterns, "/api/*")
	assert.Contains(t, patterns, "/health")
}
