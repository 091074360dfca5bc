package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tmaseko/veldmarket-backend/api/routes"
	"github.com/tmaseko/veldmarket-backend/internal/auth"
	"github.com/tmaseko/veldmarket-backend/internal/cart"
	checkoutsvc "github.com/tmaseko/veldmarket-backend/internal/checkout"
	"github.com/tmaseko/veldmarket-backend/internal/orders"
	"github.com/tmaseko/veldmarket-backend/internal/products"
	"github.com/tmaseko/veldmarket-backend/internal/tenders"
	"github.com/tmaseko/veldmarket-backend/internal/users"
	payfastwebhook "github.com/tmaseko/veldmarket-backend/internal/webhooks/payfast"
	"github.com/tmaseko/veldmarket-backend/internal/wishlist"
	"github.com/tmaseko/veldmarket-backend/pkg/auth/session"
	"github.com/tmaseko/veldmarket-backend/pkg/config"
	"github.com/tmaseko/veldmarket-backend/pkg/db"
	"github.com/tmaseko/veldmarket-backend/pkg/logger"
	"github.com/tmaseko/veldmarket-backend/pkg/metrics"
	"github.com/tmaseko/veldmarket-backend/pkg/migrate"
	"github.com/tmaseko/veldmarket-backend/pkg/payfast"
	"github.com/tmaseko/veldmarket-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	usersRepo := users.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(products.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	cartStore, err := cart.NewStore(cart.StoreParams{
		Client: redisClient,
		TTL:    cfg.Cart.SessionTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart store", err)
		os.Exit(1)
	}

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		WishlistRepo: wishlist.NewRepository(dbClient.DB()),
		ProductRepo:  products.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}

	payfastClient, err := payfast.NewClient(context.Background(), cfg.PayFast, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payfast client", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	orderService, err := orders.NewService(orders.ServiceParams{
		OrderRepo: ordersRepo,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		CartStore: cartStore,
		UserRepo:  usersRepo,
		OrderRepo: ordersRepo,
		DB:        dbClient,
		Gateway:   payfastClient,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	itnService, err := payfastwebhook.NewService(payfastwebhook.ServiceParams{
		Orders: orderService,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	tenderClient, err := tenders.NewClient(tenders.ClientParams{
		Config:  cfg.Tenders,
		Logger:  logg,
		Metrics: httpMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create tender client", err)
		os.Exit(1)
	}
	tenderService, err := tenders.NewService(tenders.ServiceParams{Fetcher: tenderClient})
	if err != nil {
		logg.Error(context.Background(), "failed to create tender service", err)
		os.Exit(1)
	}

	handler := routes.NewRouter(routes.RouterParams{
		Config:         cfg,
		Logger:         logg,
		DB:             dbClient,
		Redis:          redisClient,
		Metrics:        httpMetrics,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),

		SessionManager:  sessionManager,
		AuthService:     authService,
		ProductService:  productService,
		CartStore:       cartStore,
		WishlistService: wishlistService,
		CheckoutService: checkoutService,
		OrderService:    orderService,
		TenderService:   tenderService,

		ITNProcessor: itnService,
		ITNVerifier:  payfastClient,
		ProxyClient:  &http.Client{Timeout: cfg.Proxy.FetchTimeout},
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop:
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
