package http

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"gather/internal/auth"
	"gather/internal/metrics"
	"gather/internal/users"
)

// OAuthHandler drives the login dance against the configured identity
// providers and turns a verified assertion into a session cookie.
type OAuthHandler struct {
	registry     *auth.Registry
	signer       *auth.TokenSigner
	reconciler   *users.Service
	recorder     metrics.Recorder
	logger       *slog.Logger
	secureCookie bool
}

// NewOAuthHandler creates an OAuthHandler.
func NewOAuthHandler(registry *auth.Registry, signer *auth.TokenSigner, reconciler *users.Service, recorder metrics.Recorder, env string, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{
		registry:     registry,
		signer:       signer,
		reconciler:   reconciler,
		recorder:     recorder,
		logger:       logger,
		secureCookie: !strings.EqualFold(env, "development"),
	}
}

// Initiate handles GET /auth/{provider}.
// Redirects the user to the provider's consent screen.
func (h *OAuthHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	provider, err := h.registry.Get(chi.URLParam(r, "provider"))
	if err != nil {
		redirect(w, r, pathHome)
		return
	}

	state, err := auth.GenerateState()
	if err != nil {
		h.logger.Error("failed to generate state", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// Store state in cookie for CSRF protection
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    state,
		Path:     "/auth",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(oauthStateCookieTTL.Seconds()),
	})

	http.Redirect(w, r, provider.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback handles GET /auth/{provider}/callback.
// Exchanges the authorization code, reconciles the user record, stamps the
// session token, and lands the browser back on the home page.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	provider, err := h.registry.Get(chi.URLParam(r, "provider"))
	if err != nil {
		redirect(w, r, pathHome)
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookieName)
	if err != nil {
		h.logger.Warn("oauth callback: missing state cookie", "provider", provider.Name())
		redirect(w, r, pathHome)
		return
	}

	stateParam := r.URL.Query().Get("state")
	if subtle.ConstantTimeCompare([]byte(stateParam), []byte(stateCookie.Value)) != 1 {
		h.logger.Warn("oauth callback: state mismatch", "provider", provider.Name())
		redirect(w, r, pathHome)
		return
	}

	// Clear state cookie
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Warn("oauth callback: provider error", "provider", provider.Name(), "error", errParam)
		redirect(w, r, pathHome)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		redirect(w, r, pathHome)
		return
	}

	claims, err := provider.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth callback: exchange failed", "provider", provider.Name(), "error", err)
		redirect(w, r, pathHome)
		return
	}

	// First login creates the record; later logins return it untouched.
	user, err := h.reconciler.Reconcile(r.Context(), claims.Subject, provider.Name(), users.ProfileHints{
		Name:  claims.Name,
		Email: claims.Email,
		Image: claims.Picture,
	})
	if err != nil {
		h.logger.Error("oauth callback: reconcile failed", "provider", provider.Name(), "error", err)
		redirect(w, r, pathHome)
		return
	}

	token, _, err := h.signer.Issue(user.ID, user.Provider)
	if err != nil {
		h.logger.Error("oauth callback: token issuance failed", "error", err)
		redirect(w, r, pathHome)
		return
	}

	http.SetCookie(w, h.sessionCookie(token, h.signer.TTL()))

	h.recorder.RecordLogin(provider.Name())
	h.logger.Info("login successful", "user_id", user.ID, "provider", user.Provider)

	redirect(w, r, pathHome)
}

// Logout handles POST /auth/logout by discarding the session cookie.
func (h *OAuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clearCookie := h.sessionCookie("", 0)
	clearCookie.MaxAge = -1
	clearCookie.Expires = time.Unix(0, 0)
	http.SetCookie(w, clearCookie)

	redirect(w, r, pathHome)
}

func (h *OAuthHandler) sessionCookie(token string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secureCookie,
		MaxAge:   int(ttl.Seconds()),
	}
}
