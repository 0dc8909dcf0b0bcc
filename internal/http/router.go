package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"gather/internal/auth"
	"gather/internal/config"
	"gather/internal/groups"
	"gather/internal/metrics"
	"gather/internal/users"
)

// RouterDeps carries everything the router wires together.
type RouterDeps struct {
	Config     config.Config
	Registry   *auth.Registry
	Signer     *auth.TokenSigner
	Reconciler *users.Service
	Groups     *groups.Service
	Recorder   metrics.Recorder
	Gatherer   prometheus.Gatherer
	Logger     *slog.Logger
}

// NewRouter wires application routes and middleware using chi. The
// returned stop function releases background resources owned by the
// router, currently the rate limiter's sweep goroutine.
func NewRouter(deps RouterDeps) (http.Handler, func()) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(newSecurityHeadersMiddleware(deps.Config.Environment))
	r.Use(newSlogMiddleware(deps.Logger, deps.Recorder))
	r.Use(newSessionMiddleware(deps.Signer, deps.Reconciler, deps.Logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"environment": deps.Config.Environment,
		})
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	oauthHandler := NewOAuthHandler(deps.Registry, deps.Signer, deps.Reconciler, deps.Recorder, deps.Config.Environment, deps.Logger)
	pageHandler := NewPageHandler(deps.Groups, deps.Logger)
	groupHandler := NewGroupHandler(deps.Groups, deps.Recorder, deps.Logger)

	// The OAuth dance is anonymous; throttle it by client address.
	authLimiter := NewRateLimiter(rate.Limit(1), 10)
	r.Route("/auth", func(r chi.Router) {
		r.Use(authLimiter.Middleware())
		r.Get("/{provider}", oauthHandler.Initiate)
		r.Get("/{provider}/callback", oauthHandler.Callback)
		r.Post("/logout", oauthHandler.Logout)
	})

	r.Get("/", pageHandler.Home)
	r.Get("/account", pageHandler.Account)
	r.Get("/account/profile", pageHandler.AccountProfile)
	r.Get("/dashboard", pageHandler.Dashboard)

	r.Route("/groups", func(r chi.Router) {
		r.Get("/create", pageHandler.GroupsCreate)
		r.Get("/create/limit", pageHandler.GroupLimit)
		r.Get("/not-found", pageHandler.GroupNotFound)
		r.Get("/{_id}", pageHandler.GroupDetail)
		r.Get("/{_id}/edit", pageHandler.GroupDetail)
		r.Get("/{_id}/delete", pageHandler.GroupDetail)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/groups/create", groupHandler.Create)
		r.Delete("/groups/delete", groupHandler.Delete)
	})

	r.NotFound(http.NotFoundHandler().ServeHTTP)

	return r, authLimiter.Stop
}
