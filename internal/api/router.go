package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/kdimtricp/cinesuggest/internal/logging"
	"github.com/kdimtricp/cinesuggest/internal/metrics"
	"github.com/kdimtricp/cinesuggest/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
	// StaticDir overrides the embedded assets when set.
	StaticDir string
}

func NewRouter(app *App, config RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	origins := config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "HX-Request", "HX-Target", "HX-Current-URL"},
		MaxAge:         300,
	}))

	r.Get("/ping", PingHandler)
	r.Get("/healthz", app.HealthzHandler)
	r.Handle("/metrics", promhttp.Handler())

	static := http.FS(web.Static())
	if config.StaticDir != "" {
		static = http.Dir(config.StaticDir)
	}
	r.Handle("/static/*", http.StripPrefix("/static", http.FileServer(static)))

	r.Group(func(r chi.Router) {
		if !config.RateLimitDisabled && config.RateLimitRequests > 0 {
			r.Use(httprate.LimitByIP(config.RateLimitRequests, config.RateLimitWindow))
		}

		r.Get("/", app.HomeHandler)
		r.Post("/recommend", app.RecommendHandler)

		r.Route("/api", func(r chi.Router) {
			r.Get("/movies", app.MoviesHandler)
			r.Get("/recommendations", app.RecommendationsHandler)
			r.Get("/history", app.HistoryHandler)
		})
	})

	return r
}
