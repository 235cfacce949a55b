package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/wishlist-backend/api/controllers"
	"github.com/angelmondragon/wishlist-backend/api/middleware"
	"github.com/angelmondragon/wishlist-backend/api/responses"
	"github.com/angelmondragon/wishlist-backend/internal/shops"
	"github.com/angelmondragon/wishlist-backend/internal/wishlist"
	"github.com/angelmondragon/wishlist-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/wishlist-backend/pkg/errors"
	"github.com/angelmondragon/wishlist-backend/pkg/logger"
	"github.com/angelmondragon/wishlist-backend/pkg/metrics"
	"github.com/angelmondragon/wishlist-backend/pkg/redis"
)

// Storefront prefixes: the app proxy forwards to /wishlist, local themes and
// tests call /api/wishlist directly.
var storefrontPrefixes = []string{"/api/wishlist", "/wishlist"}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	readiness map[string]controllers.Pinger,
	limiter redis.RateLimiter,
	wishlistService wishlist.Service,
	statsEngine controllers.StatsComputer,
	shopService shops.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(m),
	)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), nil, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})
	r.MethodNotAllowed(controllers.MethodNotAllowed(nil))

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	for _, prefix := range storefrontPrefixes {
		r.Route(prefix, func(r chi.Router) {
			// GET add-to-cart is refused before signature, shop or rate checks.
			r.Get("/add-to-cart", controllers.MethodNotAllowed(logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.AppProxySignature(cfg.Shopify, logg))
				r.Use(middleware.StorefrontContext(logg))
				r.Use(middleware.RateLimit(limiter, cfg.RateLimit, logg))

				r.Post("/add-to-cart", controllers.WishlistAddToCart(wishlistService, logg))
				r.Get("/{customerId}", controllers.WishlistList(wishlistService, logg))
				r.Post("/{customerId}/add", controllers.WishlistAddItem(wishlistService, logg))
				r.Post("/{customerId}/remove", controllers.WishlistRemoveItem(wishlistService, logg))
			})
		})
	}

	r.Route("/app", func(r chi.Router) {
		r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
		r.Use(middleware.SessionAuth(cfg.Shopify, logg))

		r.Get("/dashboard", controllers.Dashboard(statsEngine, shopService, logg))
		r.Get("/settings", controllers.SettingsGet(shopService, logg))
		r.Put("/settings", controllers.SettingsUpdate(shopService, logg))
	})

	return r
}
