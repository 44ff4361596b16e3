package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wardshop/ward-backend/api/controllers"
	"github.com/wardshop/ward-backend/api/middleware"
	"github.com/wardshop/ward-backend/internal/cart"
	"github.com/wardshop/ward-backend/pkg/config"
	"github.com/wardshop/ward-backend/pkg/logger"
	"github.com/wardshop/ward-backend/pkg/metrics"
)

// Deps carries everything the router needs wired in.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	HTTPMetrics *metrics.HTTPMetrics
	MetricsGlue http.Handler
	CartService cart.Service
	LocalStore  cart.LocalStore
	Readiness   map[string]controllers.Pinger
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness))
	})

	metricsHandler := deps.MetricsGlue
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/guest", func(r chi.Router) {
		r.Use(middleware.Guest(logg))
		r.Get("/cart", controllers.GuestCartGet(deps.LocalStore, logg))
		r.Put("/cart", controllers.GuestCartPut(deps.LocalStore, logg))
		r.Delete("/cart", controllers.GuestCartDelete(deps.LocalStore, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(deps.CartService, logg))
			r.Delete("/", controllers.CartClear(deps.CartService, logg))
			r.Get("/count", controllers.CartCount(deps.CartService, logg))
			r.Post("/items", controllers.CartAddItem(deps.CartService, logg))
			r.Put("/items/{productId}", controllers.CartSetQuantity(deps.CartService, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(deps.CartService, logg))
			r.With(middleware.OptionalGuest(logg)).Post("/sync", controllers.CartSync(deps.CartService, logg))
		})
	})

	return r
}
