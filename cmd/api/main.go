package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nmartins/bazario-backend/api/controllers"
	"github.com/nmartins/bazario-backend/api/routes"
	"github.com/nmartins/bazario-backend/internal/listings"
	"github.com/nmartins/bazario-backend/internal/orders"
	"github.com/nmartins/bazario-backend/internal/pricing"
	"github.com/nmartins/bazario-backend/internal/returns"
	"github.com/nmartins/bazario-backend/pkg/config"
	"github.com/nmartins/bazario-backend/pkg/db"
	"github.com/nmartins/bazario-backend/pkg/docstore"
	"github.com/nmartins/bazario-backend/pkg/logger"
	"github.com/nmartins/bazario-backend/pkg/metrics"
	"github.com/nmartins/bazario-backend/pkg/migrate"
	"github.com/nmartins/bazario-backend/pkg/redis"
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

	ctx := context.Background()

	var (
		store    docstore.Store
		backends = map[string]controllers.Pinger{}
		closers  []func() error
	)
	switch cfg.Docstore.Driver {
	case config.DocstoreDriverRedis:
		redisClient, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		closers = append(closers, redisClient.Close)
		backends["redis"] = redisClient
		store = docstore.NewRedisStore(redisClient.Raw())
	default:
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap database", err)
			os.Exit(1)
		}
		closers = append(closers, dbClient.Close)
		backends["postgres"] = dbClient

		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient.DB()); err != nil {
			logg.Error(ctx, "failed to run dev migrations", err)
			os.Exit(1)
		}
		store = docstore.NewGormStore(dbClient.DB())
	}
	defer func() {
		for _, close := range closers {
			if err := close(); err != nil {
				logg.Error(context.Background(), "error closing storage client", err)
			}
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storeMetrics := metrics.NewStoreMetrics(registry)

	fees, taxLookup, err := pricing.FromConfig(cfg.Pricing)
	if err != nil {
		logg.Error(ctx, "failed to parse pricing config", err)
		os.Exit(1)
	}
	engine, err := pricing.NewEngine(fees, taxLookup)
	if err != nil {
		logg.Error(ctx, "failed to build pricing engine", err)
		os.Exit(1)
	}
	discount := pricing.DiscountFromConfig(cfg.Discount)

	ordersRepo, err := orders.NewRepository(store, orders.RepositoryConfig{
		OpTimeout: cfg.Docstore.OpTimeout,
		Metrics:   storeMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to build orders repository", err)
		os.Exit(1)
	}
	ordersSvc, err := orders.NewService(ordersRepo, engine, discount)
	if err != nil {
		logg.Error(ctx, "failed to build orders service", err)
		os.Exit(1)
	}

	returnsRepo, err := returns.NewRepository(store, returns.RepositoryConfig{
		OpTimeout: cfg.Docstore.OpTimeout,
	})
	if err != nil {
		logg.Error(ctx, "failed to build returns repository", err)
		os.Exit(1)
	}
	returnsSvc, err := returns.NewService(returnsRepo, ordersRepo)
	if err != nil {
		logg.Error(ctx, "failed to build returns service", err)
		os.Exit(1)
	}

	listingsRepo, err := listings.NewRepository(store, listings.RepositoryConfig{
		OpTimeout: cfg.Docstore.OpTimeout,
		Metrics:   storeMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to build listings repository", err)
		os.Exit(1)
	}
	listingsSvc, err := listings.NewService(listingsRepo)
	if err != nil {
		logg.Error(ctx, "failed to build listings service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"docstore": cfg.Docstore.Driver,
	})
	logg.Info(ctx, "starting api server")

	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, backends, ordersSvc, returnsSvc, listingsSvc, metricsHandler),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
