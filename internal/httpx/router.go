// Package httpx wires the HTTP surface: the dashboard JSON and SSE endpoints,
// filter presets, and the operational endpoints.
package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brightwater-dev/leadboard/internal/config"
	"github.com/brightwater-dev/leadboard/internal/dashboard"
	"github.com/brightwater-dev/leadboard/internal/logging"
)

func NewRouter(svc *dashboard.Service, presets *dashboard.PresetStore, cfg config.ServerConfig) http.Handler {
	h := newHandlers(svc, presets)

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Use(requestLogger(logging.With("http")))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	mux.Route("/api", func(api chi.Router) {
		api.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		api.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))

		api.Get("/dashboard", h.getDashboard)
		api.Get("/dashboard/stream", h.streamDashboard)

		api.Route("/filters/presets", func(p chi.Router) {
			p.Get("/", h.listPresets)
			p.Post("/", h.savePreset)
			p.Delete("/{id}", h.deletePreset)
		})
	})

	return mux
}
