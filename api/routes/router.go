package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmarceau/cartline-backend/api/controllers"
	"github.com/dmarceau/cartline-backend/api/middleware"
	"github.com/dmarceau/cartline-backend/internal/analytics"
	"github.com/dmarceau/cartline-backend/internal/cart"
	"github.com/dmarceau/cartline-backend/internal/catalog"
	"github.com/dmarceau/cartline-backend/internal/orders"
	"github.com/dmarceau/cartline-backend/internal/refunds"
	"github.com/dmarceau/cartline-backend/internal/sellers"
	"github.com/dmarceau/cartline-backend/internal/users"
	"github.com/dmarceau/cartline-backend/internal/wallet"
	"github.com/dmarceau/cartline-backend/pkg/config"
	"github.com/dmarceau/cartline-backend/pkg/db"
	"github.com/dmarceau/cartline-backend/pkg/enums"
	"github.com/dmarceau/cartline-backend/pkg/logger"
	"github.com/dmarceau/cartline-backend/pkg/redis"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Users     users.Service
	Wallet    wallet.Service
	Catalog   catalog.Service
	Cart      cart.Service
	Orders    orders.Service
	Refunds   refunds.Service
	Sellers   sellers.Service
	Analytics analytics.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	sellerOrAdmin := middleware.RequireAnyRole(logg,
		string(enums.UserRoleSeller), string(enums.UserRoleAdmin))
	adminOnly := middleware.RequireRole(string(enums.UserRoleAdmin), logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readyChecks(dbP, redisClient)))
	})

	authLimiter := func(policy middleware.AuthRateLimitPolicy) func(http.Handler) http.Handler {
		if redisClient == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.AuthRateLimit(policy, redisClient, logg)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(authLimiter(registerPolicy)).
			Post("/register", controllers.AuthRegister(svcs.Users, logg))
		r.With(authLimiter(loginPolicy)).
			Post("/login", controllers.AuthLogin(svcs.Users, logg))
	})

	// Public catalog surface. Auth is optional here; when a token is present
	// the tracking middleware attributes events to the user.
	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/products", controllers.ProductSearch(svcs.Catalog, svcs.Analytics, logg))
		r.Get("/products/{productId}", controllers.ProductDetail(svcs.Catalog, svcs.Analytics, logg))
		r.Get("/products/{productId}/rating", controllers.ProductRatingSummary(svcs.Catalog, logg))
		r.Get("/products/{productId}/reviews", controllers.ReviewList(svcs.Catalog, logg))
		r.Get("/categories", controllers.CategoryList(svcs.Catalog, logg))
	})
	r.Get("/api/v1/storefronts/{slug}", controllers.Storefront(svcs.Sellers, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/me", func(r chi.Router) {
			r.Get("/", controllers.UserProfile(svcs.Users, logg))
			r.Put("/", controllers.UserUpdateProfile(svcs.Users, logg))
			r.Post("/password", controllers.UserChangePassword(svcs.Users, logg))
			r.Get("/wallet", controllers.WalletBalance(svcs.Wallet, logg))
			r.Get("/wallet/transactions", controllers.WalletTransactions(svcs.Wallet, logg))
			r.Get("/refunds", controllers.BuyerRefundList(svcs.Refunds, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(svcs.Cart, logg))
			r.Post("/items", controllers.CartAddItem(svcs.Cart, logg))
			r.Put("/items/{productId}", controllers.CartUpdateItem(svcs.Cart, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(svcs.Cart, logg))
			r.Delete("/", controllers.CartClear(svcs.Cart, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderPlace(svcs.Orders, logg))
			r.Get("/", controllers.OrderList(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(svcs.Orders, logg))
			r.Get("/{orderId}/history", controllers.OrderHistory(svcs.Orders, logg))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(svcs.Orders, logg))
			r.With(sellerOrAdmin).
				Post("/{orderId}/status", controllers.OrderUpdateStatus(svcs.Orders, logg))
		})

		r.Post("/products/{productId}/reviews", controllers.ReviewCreate(svcs.Catalog, logg))

		r.Route("/seller", func(r chi.Router) {
			r.Use(sellerOrAdmin)
			r.Post("/profile", controllers.SellerProfileCreate(svcs.Sellers, logg))
			r.Get("/profile", controllers.SellerProfileGet(svcs.Sellers, logg))
			r.Put("/profile", controllers.SellerProfileUpdate(svcs.Sellers, logg))
			r.Get("/dashboard", controllers.SellerDashboard(svcs.Sellers, logg))
			r.Get("/sales", controllers.SellerSalesSeries(svcs.Analytics, logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.SellerProductList(svcs.Catalog, logg))
				r.Post("/", controllers.SellerProductCreate(svcs.Catalog, logg))
				r.Patch("/{productId}", controllers.SellerProductUpdate(svcs.Catalog, logg))
				r.Delete("/{productId}", controllers.SellerProductDeactivate(svcs.Catalog, logg))
			})

			r.Get("/orders", controllers.SellerOrderList(svcs.Orders, logg))

			r.Route("/refunds", func(r chi.Router) {
				r.Post("/", controllers.RefundCreate(svcs.Refunds, logg))
				r.Get("/", controllers.SellerRefundList(svcs.Refunds, logg))
			})

			r.Route("/payouts", func(r chi.Router) {
				r.Post("/", controllers.SellerPayoutRequest(svcs.Sellers, logg))
				r.Get("/", controllers.SellerPayoutList(svcs.Sellers, logg))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(adminOnly)
			r.Post("/categories", controllers.CategoryCreate(svcs.Catalog, logg))
			r.Patch("/categories/{categoryId}", controllers.CategoryUpdate(svcs.Catalog, logg))
			r.Get("/analytics/top-products", controllers.TopProducts(svcs.Analytics, logg))
			r.Get("/analytics/top-searches", controllers.TopSearches(svcs.Analytics, logg))
		})
	})

	return r
}

func readyChecks(dbP db.Pinger, redisClient *redis.Client) map[string]controllers.Pinger {
	checks := map[string]controllers.Pinger{}
	if dbP != nil {
		checks["database"] = dbP
	}
	if redisClient != nil {
		checks["redis"] = redisClient
	}
	return checks
}
