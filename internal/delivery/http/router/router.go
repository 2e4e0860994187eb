package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/user/imagewatch/internal/delivery/http/handler"
	"github.com/user/imagewatch/internal/delivery/http/middleware"
	"github.com/user/imagewatch/pkg/metrics"
)

// Options configures the routes served next to the API.
type Options struct {
	Gatherer   prometheus.Gatherer
	ReportsDir string
	ImagesDir  string
}

func New(h *handler.Handler, m *metrics.Metrics, logger *zap.Logger, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(m))
	r.Use(chimw.Recoverer)

	r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.With(chimw.Timeout(10*time.Second)).Get("/health", h.HandleHealthCheck)
		r.With(chimw.Timeout(30*time.Second)).Get("/reports/latest", h.HandleLatestReport)
		r.Post("/runs", h.HandleTriggerRun)
	})

	// Reports link to ../images/<id>.jpg, so both trees are served side by side.
	if opts.ReportsDir != "" {
		r.Handle("/reports/*", http.StripPrefix("/reports/", http.FileServer(http.Dir(opts.ReportsDir))))
	}
	if opts.ImagesDir != "" {
		r.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.Dir(opts.ImagesDir))))
	}

	return r
}
