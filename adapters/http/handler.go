// Package http provides the MediaVault REST API handlers.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"mediavault/adapters/auth"
	"mediavault/adapters/metrics"
	"mediavault/app"
	"mediavault/pkg/jsonapi"
)

// Deps contains dependencies for the API handler.
type Deps struct {
	Users     *app.UserService
	Assets    *app.AssetService
	Analytics *app.AnalyticsService
	Tokens    *auth.TokenService
	Metrics   *metrics.Collector
	Logger    zerolog.Logger
}

// Handler serves the REST API.
type Handler struct {
	users     *app.UserService
	assets    *app.AssetService
	analytics *app.AnalyticsService
	tokens    *auth.TokenService
	metrics   *metrics.Collector
	logger    zerolog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		users:     deps.Users,
		assets:    deps.Assets,
		analytics: deps.Analytics,
		tokens:    deps.Tokens,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
	}
}

// Router returns the API router.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(h.observe)

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		// Protected endpoints
		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)

			r.Get("/users/me", h.Me)

			r.Route("/assets", func(r chi.Router) {
				r.Get("/", h.ListAssets)
				r.Post("/", h.CreateAsset)
				r.Get("/folders", h.ListFolders)
				r.Get("/folders/{folder}", h.AssetsByFolder)
				r.Get("/{id}", h.GetAsset)
				r.Delete("/{id}", h.DeleteAsset)
				r.Post("/{id}/restore", h.RestoreAsset)
				r.Patch("/{id}/privacy", h.SetPrivacy)
				r.Post("/{id}/invalidate", h.InvalidateAsset)
				r.Get("/{id}/signed-url", h.SignedAssetURL)
				r.Get("/{id}/bandwidth", h.AssetBandwidth)
			})

			r.Route("/analytics", func(r chi.Router) {
				r.Get("/bandwidth", h.UserBandwidth)
				r.Get("/bandwidth/assets", h.AssetBreakdown)
				r.Get("/bandwidth/daily", h.DailyBandwidth)
				r.Get("/charts", h.Charts)
			})

			r.Post("/logs", h.IngestLogs)
		})
	})

	return r
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	jsonapi.WriteData(w, http.StatusOK, map[string]string{"status": "ok"})
}
