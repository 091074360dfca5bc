package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tmaseko/veldmarket-backend/api/controllers"
	proxycontrollers "github.com/tmaseko/veldmarket-backend/api/controllers/proxy"
	webhookcontrollers "github.com/tmaseko/veldmarket-backend/api/controllers/webhooks"
	"github.com/tmaseko/veldmarket-backend/api/middleware"
	"github.com/tmaseko/veldmarket-backend/internal/auth"
	"github.com/tmaseko/veldmarket-backend/internal/cart"
	checkoutsvc "github.com/tmaseko/veldmarket-backend/internal/checkout"
	"github.com/tmaseko/veldmarket-backend/internal/orders"
	"github.com/tmaseko/veldmarket-backend/internal/products"
	"github.com/tmaseko/veldmarket-backend/internal/tenders"
	"github.com/tmaseko/veldmarket-backend/internal/wishlist"
	"github.com/tmaseko/veldmarket-backend/pkg/auth/session"
	"github.com/tmaseko/veldmarket-backend/pkg/config"
	"github.com/tmaseko/veldmarket-backend/pkg/db"
	"github.com/tmaseko/veldmarket-backend/pkg/enums"
	"github.com/tmaseko/veldmarket-backend/pkg/logger"
	"github.com/tmaseko/veldmarket-backend/pkg/metrics"
	"github.com/tmaseko/veldmarket-backend/pkg/redis"
)

// RouterParams collects everything the HTTP surface depends on.
type RouterParams struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	Metrics        *metrics.HTTPMetrics
	MetricsHandler http.Handler

	SessionManager  session.AccessSessionChecker
	AuthService     auth.Service
	ProductService  products.Service
	CartStore       *cart.Store
	WishlistService wishlist.Service
	CheckoutService checkoutsvc.Service
	OrderService    orders.Service
	TenderService   tenders.Service

	ITNProcessor webhookcontrollers.ITNProcessor
	ITNVerifier  webhookcontrollers.ITNVerifier
	ProxyClient  *http.Client
}

// NewRouter wires middleware and controllers into the chi tree.
func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(p.Metrics),
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
	var idempotencyStore redis.IdempotencyStore
	if p.Redis != nil {
		idempotencyStore = p.Redis
	}
	idempotency := middleware.Idempotency(idempotencyStore, logg)
	requireAuth := middleware.Auth(cfg.JWT, p.SessionManager, logg)
	requireAdmin := middleware.RequireRole(string(enums.UserRoleAdmin), logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})
	if p.MetricsHandler != nil {
		r.Handle("/metrics", p.MetricsHandler)
	}

	r.Route("/api/public", func(r chi.Router) {
		relay := proxycontrollers.Etenders(proxycontrollers.EtendersParams{
			BaseURL: cfg.Tenders.BaseURL,
			Client:  p.ProxyClient,
			Logger:  logg,
		})
		r.Get("/etenders-proxy", relay)
		r.Post("/etenders-proxy", relay)
		r.Get("/pdf-proxy", proxycontrollers.PDF(proxycontrollers.PDFParams{
			Client:   p.ProxyClient,
			MaxBytes: cfg.Proxy.PDFMaxBytes,
			Logger:   logg,
		}))
		r.Post("/webhooks/payfast", webhookcontrollers.PayFastITN(p.ITNProcessor, p.ITNVerifier, logg))
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.With(
			middleware.AuthRateLimit(registerPolicy, p.Redis, logg),
			idempotency,
		).Post("/register", controllers.AuthRegister(p.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.AuthService, logg))
		r.With(requireAuth).Post("/logout", controllers.AuthLogout(p.AuthService, logg))
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(p.ProductService, logg))
		r.Get("/{productId}", controllers.ProductDetail(p.ProductService, logg))
	})
	r.Get("/api/collections", controllers.CollectionList(p.ProductService, logg))
	r.Get("/api/tenders", controllers.TenderSearch(p.TenderService, logg))

	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", controllers.CartFetch(p.CartStore, logg))
		r.Post("/items", controllers.CartAdd(p.CartStore, logg))
		r.Patch("/items", controllers.CartUpdateItem(p.CartStore, logg))
		r.Delete("/items", controllers.CartRemoveItem(p.CartStore, logg))
		r.Delete("/", controllers.CartClear(p.CartStore, logg))
		r.Post("/toggle", controllers.CartToggle(p.CartStore, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.With(idempotency).Post("/api/checkout", controllers.Checkout(p.CheckoutService, logg))

		r.Route("/api/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistFetch(p.WishlistService, logg))
			r.Post("/", controllers.WishlistAdd(p.WishlistService, logg))
			r.Delete("/{productId}", controllers.WishlistRemove(p.WishlistService, logg))
		})

		r.Route("/api/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(p.OrderService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(p.OrderService, logg))
			r.With(idempotency).Post("/{orderId}/complete", controllers.OrderComplete(p.OrderService, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(requireAdmin)

		r.Post("/products", controllers.AdminCreateProduct(p.ProductService, logg))
		r.Patch("/products/{productId}", controllers.AdminUpdateProduct(p.ProductService, logg))
		r.Delete("/products/{productId}", controllers.AdminDeleteProduct(p.ProductService, logg))

		r.Post("/collections", controllers.AdminCreateCollection(p.ProductService, logg))
		r.Delete("/collections/{collectionId}", controllers.AdminDeleteCollection(p.ProductService, logg))

		r.Get("/orders", controllers.AdminOrderList(p.OrderService, logg))
	})

	return r
}
