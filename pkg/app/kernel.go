package app

import (
	"context"
	"net/http"
	"time"

	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/reqid"
	"github.com/shashiranjanraj/storefront/pkg/response"
	"github.com/shashiranjanraj/storefront/pkg/router"
)

// Router registers every route on a fresh router with the global
// middleware stack. The rate limiter's janitor stops with ctx.
func (a *Application) Router(ctx context.Context) *router.Router {
	r := router.New()

	limiter := middleware.NewLimiter(config.RateLimitPerMinute(), time.Minute)
	limiter.StartJanitor(ctx)

	// Outermost first: metrics see total latency, recovery sits outside
	// everything that can panic, the request id exists before logging.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(limiter.Middleware)

	r.HandleFunc("/metrics", metrics.Handler())
	r.Get("/healthz", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"cache": a.Cache.Driver()})
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w)
	})

	routes.RegisterAPI(r, routes.Services{
		Search:     a.Search,
		Catalog:    a.Catalog,
		Categories: a.CategoryAdmin,
	})
	return r
}

// Handler is Router(ctx).Handler().
func (a *Application) Handler(ctx context.Context) http.Handler {
	return a.Router(ctx).Handler()
}
