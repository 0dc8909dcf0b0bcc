package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"gather/internal/auth"
	"gather/internal/config"
	"gather/internal/groups"
	"gather/internal/metrics"
	"gather/internal/users"
)

type providerStub struct {
	name   string
	claims *auth.Claims
	err    error
}

func (p *providerStub) Name() string {
	return p.name
}

func (p *providerStub) AuthURL(state string) string {
	return "https://idp.example.com/consent?state=" + url.QueryEscape(state)
}

func (p *providerStub) Exchange(_ context.Context, _ string) (*auth.Claims, error) {
	return p.claims, p.err
}

type testEnv struct {
	router    http.Handler
	signer    *auth.TokenSigner
	userRepo  *users.InMemoryRepository
	groupRepo *groups.InMemoryRepository
}

func newTestEnv(t *testing.T, providers ...auth.Provider) *testEnv {
	t.Helper()

	userRepo := users.NewInMemoryRepository(nil)
	groupRepo := groups.NewInMemoryRepository(nil)
	signer := auth.NewTokenSigner("test-secret", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router, stop := NewRouter(RouterDeps{
		Config: config.Config{
			Environment:    "development",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Registry:   auth.NewRegistry(providers...),
		Signer:     signer,
		Reconciler: users.NewService(userRepo),
		Groups:     groups.NewService(groupRepo, userRepo),
		Recorder:   metrics.Noop{},
		Logger:     logger,
	})
	t.Cleanup(stop)

	return &testEnv{
		router:    router,
		signer:    signer,
		userRepo:  userRepo,
		groupRepo: groupRepo,
	}
}

// signIn persists a user and returns a session cookie for it.
func (e *testEnv) signIn(t *testing.T, user users.User) *http.Cookie {
	t.Helper()

	if _, err := e.userRepo.FindByID(context.Background(), user.ID); err != nil {
		if err := e.userRepo.Insert(context.Background(), user); err != nil {
			t.Fatalf("insert user: %v", err)
		}
	}

	token, _, err := e.signer.Issue(user.ID, user.Provider)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return &http.Cookie{Name: sessionCookieName, Value: token}
}

func (e *testEnv) get(t *testing.T, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, target string) {
	t.Helper()

	if rec.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != target {
		t.Fatalf("expected redirect to %q, got %q", target, got)
	}
}
