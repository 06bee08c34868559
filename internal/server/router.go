package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/TwigBush/roleguard/internal/handlers"
	mw2 "github.com/TwigBush/roleguard/internal/mw"
)

type Options struct {
	EnableCORS     bool
	AllowedOrigins []string      // default "*"
	RequestTimeout time.Duration // 0 disables the per-request deadline
}

type Deps struct {
	Guard      mw2.Authorizer
	Operations func() []string
	Metrics    http.Handler // nil hides /metrics
	Logger     *slog.Logger
}

func BuildRouter(d Deps, opts Options, mw ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	// baseline
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	if opts.EnableCORS {
		origins := opts.AllowedOrigins
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization", "X-Trace-Id"},
			ExposedHeaders: []string{"X-Trace-Id"},
			MaxAge:         300,
		}))
	}
	for _, m := range mw {
		r.Use(m)
	}

	// tracing + logger
	r.Use(otelhttp.NewMiddleware("roleguard",
		otelhttp.WithFilter(func(r *http.Request) bool { return r.URL.Path != "/healthz" && r.URL.Path != "/metrics" }),
	))
	r.Use(mw2.Trace())
	r.Use(mw2.Logger(mw2.LogOpts{
		Logger:    d.Logger,
		SkipPaths: []string{"/healthz", "/version", "/metrics"},
	}))

	r.Get("/healthz", handlers.Health)
	r.Get("/version", handlers.Version)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	authorize := handlers.NewAuthorizeHandler(d.Guard)
	r.Route("/authorize", func(ar chi.Router) {
		ar.Use(mw2.NoStore)
		if opts.RequestTimeout > 0 {
			ar.Use(middleware.Timeout(opts.RequestTimeout))
		}
		ar.Use(mw2.Bearer)

		ar.Get("/", DiscoveryHandler(d.Operations))
		ar.Get("/{operation}", authorize.ServeHTTP)
		ar.Post("/{operation}", authorize.ServeHTTP)
	})

	return r
}
