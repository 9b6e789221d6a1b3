package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-blog-server/auth"
	"github.com/jrsteele09/go-blog-server/auth/sessions/storefakes"
	"github.com/jrsteele09/go-blog-server/blog"
	fakepostrepo "github.com/jrsteele09/go-blog-server/blog/repofake"
	"github.com/jrsteele09/go-blog-server/internal/config"
	"github.com/jrsteele09/go-blog-server/search/indexerfakes"
	"github.com/jrsteele09/go-blog-server/token"
	fakeuserrepo "github.com/jrsteele09/go-blog-server/users/repofake"
)

const (
	testEmail    = "bob@example.com"
	testPassword = "Secret123"
)

type testFixture struct {
	server *Server
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()

	accessSigner, err := token.NewSigner("test-access-secret", 15*time.Minute)
	require.NoError(t, err)
	refreshSigner, err := token.NewSigner("test-refresh-secret", 7*24*time.Hour)
	require.NoError(t, err)

	authService, err := auth.NewService(
		auth.Repos{
			Users:    fakeuserrepo.NewFakeUserRepo(),
			Sessions: storefakes.NewFakeStore(),
		},
		auth.NewArgon2idHasher(),
		accessSigner,
		refreshSigner,
	)
	require.NoError(t, err)

	blogService, err := blog.NewService(fakepostrepo.NewFakePostRepo(), indexerfakes.NewFakeIndexer())
	require.NoError(t, err)

	srv, err := New(config.New(), authService, blogService, zerolog.Nop())
	require.NoError(t, err)

	return &testFixture{server: srv}
}

// request performs an in-process round trip against the server mux. A
// non-empty bearer sets the Authorization header.
func (f *testFixture) request(t *testing.T, method, path string, body any, bearer string) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(encoded)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (f *testFixture) registerUser(t *testing.T) {
	t.Helper()
	rec := f.request(t, http.MethodPost, RouteAuthRegister, map[string]string{
		"name":     "Bob",
		"username": "bob",
		"email":    testEmail,
		"password": testPassword,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
}

func (f *testFixture) loginUser(t *testing.T) auth.TokenPair {
	t.Helper()
	rec := f.request(t, http.MethodPost, RouteAuthLogin, map[string]string{
		"email":    testEmail,
		"password": testPassword,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	return decodeBody[auth.TokenPair](t, rec)
}

func TestRegisterHandler(t *testing.T) {
	fixture := newTestFixture(t)
	fixture.registerUser(t)

	// Same email again conflicts
	rec := fixture.request(t, http.MethodPost, RouteAuthRegister, map[string]string{
		"name":     "Bobby",
		"username": "bobby",
		"email":    testEmail,
		"password": testPassword,
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterHandlerRejectsWeakPassword(t *testing.T) {
	fixture := newTestFixture(t)

	rec := fixture.request(t, http.MethodPost, RouteAuthRegister, map[string]string{
		"name":     "Bob",
		"username": "bob",
		"email":    testEmail,
		"password": "weak",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginHandler(t *testing.T) {
	fixture := newTestFixture(t)
	fixture.registerUser(t)

	pair := fixture.loginUser(t)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	rec := fixture.request(t, http.MethodPost, RouteAuthLogin, map[string]string{
		"email":    testEmail,
		"password": "WrongPass1",
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshHandlerRotatesToken(t *testing.T) {
	fixture := newTestFixture(t)
	fixture.registerUser(t)
	pair := fixture.loginUser(t)

	rec := fixture.request(t, http.MethodPost, RouteAuthRefresh, map[string]string{
		"refreshToken": pair.RefreshToken,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rotated := decodeBody[auth.TokenPair](t, rec)
	require.NotEmpty(t, rotated.RefreshToken)

	// The consumed refresh token is no longer accepted
	rec = fixture.request(t, http.MethodPost, RouteAuthRefresh, map[string]string{
		"refreshToken": pair.RefreshToken,
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutHandler(t *testing.T) {
	fixture := newTestFixture(t)
	fixture.registerUser(t)
	pair := fixture.loginUser(t)

	// Logout requires a bearer token
	rec := fixture.request(t, http.MethodPost, RouteAuthLogout, nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = fixture.request(t, http.MethodPost, RouteAuthLogout, nil, pair.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)

	// The stored refresh token died with the session
	rec = fixture.request(t, http.MethodPost, RouteAuthRefresh, map[string]string{
		"refreshToken": pair.RefreshToken,
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestValidateCredentialsHandler(t *testing.T) {
	fixture := newTestFixture(t)
	fixture.registerUser(t)

	rec := fixture.request(t, http.MethodPost, RouteAuthValidate, map[string]string{
		"email":    testEmail,
		"password": testPassword,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	require.Equal(t, testEmail, body["email"])
	require.NotContains(t, rec.Body.String(), "passwordHash")

	rec = fixture.request(t, http.MethodPost, RouteAuthValidate, map[string]string{
		"email":    testEmail,
		"password": "WrongPass1",
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreatePostRequiresAuth(t *testing.T) {
	fixture := newTestFixture(t)

	rec := fixture.request(t, http.MethodPost, RouteBlogPosts, map[string]any{
		"title":   "Hello",
		"content": "<p>First post</p>",
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBlogPostLifecycle(t *testing.T) {
	fixture := newTestFixture(t)
	fixture.registerUser(t)
	pair := fixture.loginUser(t)

	rec := fixture.request(t, http.MethodPost, RouteBlogPosts, map[string]any{
		"title":   "Hello World",
		"content": "<p>First post</p><script>alert(1)</script>",
		"tags":    []string{"intro"},
	}, pair.AccessToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[blog.Post](t, rec)
	require.Equal(t, "hello-world", created.Slug)
	require.NotContains(t, created.Content, "<script>")

	rec = fixture.request(t, http.MethodGet, "/blog/slug/hello-world", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = fixture.request(t, http.MethodPut, "/blog/posts/"+created.ID, map[string]any{
		"title": "Hello Again",
	}, pair.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeBody[blog.Post](t, rec)
	require.Equal(t, "Hello Again", updated.Title)

	rec = fixture.request(t, http.MethodDelete, "/blog/posts/"+created.ID, nil, pair.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = fixture.request(t, http.MethodGet, "/blog/slug/hello-world", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdatePostForbiddenForNonAuthor(t *testing.T) {
	fixture := newTestFixture(t)
	fixture.registerUser(t)
	pair := fixture.loginUser(t)

	rec := fixture.request(t, http.MethodPost, RouteBlogPosts, map[string]any{
		"title":   "Owned",
		"content": "<p>mine</p>",
	}, pair.AccessToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[blog.Post](t, rec)

	// Second account must not be able to edit the first account's post
	rec = fixture.request(t, http.MethodPost, RouteAuthRegister, map[string]string{
		"name":     "Eve",
		"username": "eve",
		"email":    "eve@example.com",
		"password": testPassword,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = fixture.request(t, http.MethodPost, RouteAuthLogin, map[string]string{
		"email":    "eve@example.com",
		"password": testPassword,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	evePair := decodeBody[auth.TokenPair](t, rec)

	rec = fixture.request(t, http.MethodPut, "/blog/posts/"+created.ID, map[string]any{
		"title": "Hijacked",
	}, evePair.AccessToken)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSearchPostsHandler(t *testing.T) {
	fixture := newTestFixture(t)
	fixture.registerUser(t)
	pair := fixture.loginUser(t)

	rec := fixture.request(t, http.MethodPost, RouteBlogPosts, map[string]any{
		"title":   "Gopher Patterns",
		"content": "<p>concurrency in practice</p>",
	}, pair.AccessToken)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = fixture.request(t, http.MethodGet, RouteBlogSearch+"?q=gopher", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Gopher Patterns")

	rec = fixture.request(t, http.MethodGet, RouteBlogSearch, nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPostsHandler(t *testing.T) {
	fixture := newTestFixture(t)

	rec := fixture.request(t, http.MethodGet, RouteBlogPosts, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	require.Empty(t, body["posts"])
}

func TestOAuthRedirectNotConfigured(t *testing.T) {
	fixture := newTestFixture(t)

	// No client IDs in the environment: federated login routes 404
	rec := fixture.request(t, http.MethodGet, RouteAuthGoogle, nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = fixture.request(t, http.MethodGet, RouteAuthGithub, nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
