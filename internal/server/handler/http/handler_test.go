package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atinyakov/practicelog/internal/auth"
	"github.com/atinyakov/practicelog/internal/middleware"
	"github.com/atinyakov/practicelog/internal/models"
	"github.com/atinyakov/practicelog/internal/service"
)

// fakeAuthService implements AuthService for testing.
type fakeAuthService struct {
	token       string
	loginErr    error
	registerErr error

	gotUsername string
	gotPassword string
}

func (f *fakeAuthService) Login(ctx context.Context, username, password string) (string, error) {
	f.gotUsername, f.gotPassword = username, password
	return f.token, f.loginErr
}

func (f *fakeAuthService) Register(ctx context.Context, username, password string) error {
	f.gotUsername, f.gotPassword = username, password
	return f.registerErr
}

// fakePracticeService implements PracticeService for testing.
type fakePracticeService struct {
	sessions []models.PracticeSession
	listErr  error
	applyErr error

	gotToken   string
	gotActions []service.Action
}

func (f *fakePracticeService) List(ctx context.Context, token string) ([]models.PracticeSession, error) {
	f.gotToken = token
	return f.sessions, f.listErr
}

func (f *fakePracticeService) Apply(ctx context.Context, token string, a service.Action) error {
	f.gotToken = token
	f.gotActions = append(f.gotActions, a)
	return f.applyErr
}

type testServer struct {
	store    *auth.Store
	auth     *fakeAuthService
	practice *fakePracticeService
	handler  http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newLimitedTestServer(t, middleware.RateLimitConfig{Requests: 1000, Window: time.Minute, Burst: 1000}, false)
}

func newLimitedTestServer(t *testing.T, limit middleware.RateLimitConfig, trustProxy bool) *testServer {
	t.Helper()

	store, err := auth.NewStore(auth.StoreOptions{Secrets: []string{"test-secret"}})
	require.NoError(t, err)
	views, err := NewRenderer()
	require.NoError(t, err)

	ts := &testServer{
		store:    store,
		auth:     &fakeAuthService{},
		practice: &fakePracticeService{},
	}
	logger := zap.NewNop()
	authHandler := &AuthHandler{AuthService: ts.auth, Store: store, Views: views, Logger: logger}
	homeHandler := &HomeHandler{
		PracticeService: ts.practice,
		Store:           store,
		Views:           views,
		Logger:          logger,
		Now:             func() time.Time { return time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC) },
	}
	ts.handler = NewRouter(store, authHandler, homeHandler, limit, trustProxy, logger)
	return ts
}

// sessionCookie returns a cookie whose session holds the given values.
func (ts *testServer) sessionCookie(t *testing.T, token, message string) *http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess := ts.store.Session(req)
	if token != "" {
		auth.SetToken(sess, token)
	}
	if message != "" {
		auth.Flash(sess, message)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, ts.store.Commit(req, rec, sess))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func (ts *testServer) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// sessionFrom decodes the session cookie set on rec.
func (ts *testServer) sessionFrom(t *testing.T, rec *httptest.ResponseRecorder) (token string, hasToken bool, message string) {
	t.Helper()
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			found = c
		}
	}
	require.NotNil(t, found, "expected a %s cookie", auth.CookieName)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(found)
	sess := ts.store.Session(req)
	token, hasToken = auth.Token(sess)
	return token, hasToken, auth.TakeMessage(sess)
}
