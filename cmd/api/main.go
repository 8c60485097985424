package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/agriconecta/backend/api/routes"
	"github.com/agriconecta/backend/internal/auth"
	"github.com/agriconecta/backend/internal/catalog"
	"github.com/agriconecta/backend/internal/codigos"
	"github.com/agriconecta/backend/internal/dashboard"
	"github.com/agriconecta/backend/internal/export"
	"github.com/agriconecta/backend/internal/fleet"
	"github.com/agriconecta/backend/internal/locations"
	"github.com/agriconecta/backend/internal/logistics"
	"github.com/agriconecta/backend/internal/notifications"
	"github.com/agriconecta/backend/internal/orders"
	"github.com/agriconecta/backend/internal/users"
	"github.com/agriconecta/backend/pkg/auth/session"
	"github.com/agriconecta/backend/pkg/config"
	"github.com/agriconecta/backend/pkg/db"
	"github.com/agriconecta/backend/pkg/logger"
	"github.com/agriconecta/backend/pkg/metrics"
	"github.com/agriconecta/backend/pkg/migrate"
	"github.com/agriconecta/backend/pkg/redis"
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	codeGenerator, err := codigos.NewGenerator(cfg.Dashboard.TimeZone)
	if err != nil {
		logg.Error(context.Background(), "failed to create code generator", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		LoginLimiter:   redisClient,
		TxRunner:       dbClient,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(users.ServiceParams{
		Repo:           userRepo,
		TxRunner:       dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	locationsService, err := locations.NewService(locations.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create locations service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:     orders.NewRepository(dbClient.DB()),
		TxRunner: dbClient,
		Codigos:  codeGenerator,
		Notifier: notificationsService,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	logisticsService, err := logistics.NewService(logistics.ServiceParams{
		Repo:     logistics.NewRepository(dbClient.DB()),
		TxRunner: dbClient,
		Codigos:  codeGenerator,
		Notifier: notificationsService,
		Logger:   logg,
		TimeZone: cfg.Dashboard.TimeZone,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create logistics service", err)
		os.Exit(1)
	}

	fleetService, err := fleet.NewService(fleet.ServiceParams{
		Repo:     fleet.NewRepository(dbClient.DB()),
		TimeZone: cfg.Dashboard.TimeZone,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create fleet service", err)
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(dashboard.ServiceParams{
		Repo:     dashboard.NewRepository(dbClient.DB()),
		TimeZone: cfg.Dashboard.TimeZone,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}

	exportService, err := export.NewService(export.ServiceParams{Tablero: dashboardService})
	if err != nil {
		logg.Error(context.Background(), "failed to create export service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

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

	router := routes.NewRouter(
		routes.Deps{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Sessions:    sessionManager,
			HTTPMetrics: httpMetrics,
			Gatherer:    registry,
		},
		routes.Services{
			Auth:          authService,
			Users:         usersService,
			Locations:     locationsService,
			Catalog:       catalogService,
			Orders:        ordersService,
			Logistics:     logisticsService,
			Fleet:         fleetService,
			Notifications: notificationsService,
			Dashboard:     dashboardService,
			Export:        exportService,
		},
	)

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
