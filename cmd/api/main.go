package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmarceau/cartline-backend/api/routes"
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
	"github.com/dmarceau/cartline-backend/pkg/logger"
	"github.com/dmarceau/cartline-backend/pkg/migrate"
	"github.com/dmarceau/cartline-backend/pkg/redis"
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

	svcs, err := buildServices(cfg, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, svcs),
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
		logg.Info(ctx, "api server shut down gracefully")
	}
}

func buildServices(cfg *config.Config, dbClient *db.Client) (routes.Services, error) {
	gormDB := dbClient.DB()

	usersRepo := users.NewRepository(gormDB)
	walletRepo := wallet.NewRepository(gormDB)
	catalogRepo := catalog.NewRepository(gormDB)
	cartRepo := cart.NewRepository(gormDB)
	ordersRepo := orders.NewRepository(gormDB)
	refundsRepo := refunds.NewRepository(gormDB)
	sellersRepo := sellers.NewRepository(gormDB)
	analyticsRepo := analytics.NewRepository(gormDB)

	usersService, err := users.NewService(usersRepo, cfg.JWT, cfg.Password)
	if err != nil {
		return routes.Services{}, err
	}
	walletService, err := wallet.NewService(walletRepo)
	if err != nil {
		return routes.Services{}, err
	}
	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		return routes.Services{}, err
	}
	cartService, err := cart.NewService(cartRepo, catalogRepo)
	if err != nil {
		return routes.Services{}, err
	}
	ordersService, err := orders.NewService(ordersRepo, dbClient, cartRepo, catalogRepo, walletService)
	if err != nil {
		return routes.Services{}, err
	}
	refundsService, err := refunds.NewService(refundsRepo, ordersRepo, catalogRepo, walletService, dbClient)
	if err != nil {
		return routes.Services{}, err
	}
	sellersService, err := sellers.NewService(sellersRepo, catalogRepo, dbClient)
	if err != nil {
		return routes.Services{}, err
	}
	analyticsService, err := analytics.NewService(analyticsRepo)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Users:     usersService,
		Wallet:    walletService,
		Catalog:   catalogService,
		Cart:      cartService,
		Orders:    ordersService,
		Refunds:   refundsService,
		Sellers:   sellersService,
		Analytics: analyticsService,
	}, nil
}
