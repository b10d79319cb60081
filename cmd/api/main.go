package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kinaskak/storefront-backend/api/routes"
	cartsvc "github.com/kinaskak/storefront-backend/internal/cart"
	catalogsvc "github.com/kinaskak/storefront-backend/internal/catalog"
	checkoutsvc "github.com/kinaskak/storefront-backend/internal/checkout"
	"github.com/kinaskak/storefront-backend/internal/notifications"
	"github.com/kinaskak/storefront-backend/pkg/config"
	"github.com/kinaskak/storefront-backend/pkg/db"
	"github.com/kinaskak/storefront-backend/pkg/logger"
	"github.com/kinaskak/storefront-backend/pkg/migrate"
	"github.com/kinaskak/storefront-backend/pkg/outbox"
	"github.com/kinaskak/storefront-backend/pkg/rapyd"
	"github.com/kinaskak/storefront-backend/pkg/redis"
)

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

	rapydClient, err := rapyd.NewClient(context.Background(), cfg.Rapyd, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap rapyd client", err)
		os.Exit(1)
	}

	mailer, err := notifications.NewMailer(cfg.SMTP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer", err)
		os.Exit(1)
	}

	catalogService, err := catalogsvc.NewService(catalogsvc.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	var cartStore cartsvc.Store = cartsvc.NewRepository(dbClient.DB())
	if cfg.FeatureFlags.EphemeralCartStore {
		logg.Warn(context.Background(), "using ephemeral in-memory cart store")
		cartStore = cartsvc.NewMemoryStore()
	}

	cartService, err := cartsvc.NewService(cartStore, catalogService, cfg.Checkout.Currency, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	checkoutService, err := checkoutsvc.NewService(
		dbClient,
		checkoutsvc.NewRepository(dbClient.DB()),
		cartStore,
		catalogService,
		rapydClient,
		mailer,
		outboxService,
		cfg.Checkout,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

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
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			CatalogService:  catalogService,
			CartService:     cartService,
			CheckoutService: checkoutService,
			Registry:        prometheus.NewRegistry(),
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
