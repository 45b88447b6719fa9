package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/ST1000-S/iTechies/internal/api/http"
	"github.com/ST1000-S/iTechies/internal/api/http/handlers"
	"github.com/ST1000-S/iTechies/internal/auth"
	"github.com/ST1000-S/iTechies/internal/config"
	"github.com/ST1000-S/iTechies/internal/events"
	"github.com/ST1000-S/iTechies/internal/observability"
	"github.com/ST1000-S/iTechies/internal/persistence"
	"github.com/ST1000-S/iTechies/internal/repository"
	"github.com/ST1000-S/iTechies/internal/service"
	"github.com/ST1000-S/iTechies/internal/session"
	"github.com/ST1000-S/iTechies/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	requestRepo := repository.NewRequestRepository(pool)

	sessions := session.NewRedisStore(redis.Client, cfg.Session.TTL())
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		Sessions:   sessions,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	requestService := service.NewRequestService(requestRepo, dispatcher)
	providerService := service.NewProviderService(userRepo, dispatcher)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:      handlers.NewAuthHandler(authService, cfg.Session),
		Dashboard: handlers.NewDashboardHandler(requestService, providerService),
		Requests:  handlers.NewRequestsHandler(requestService),
		Providers: handlers.NewProvidersHandler(providerService),
		Sessions:  auth.NewSessionMiddleware(sessions, cfg.Session.CookieName, logger),
		Gates:     auth.NewGatekeeper(sessions, cfg.Session.CookieName, logger),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
