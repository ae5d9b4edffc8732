package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/markvl91/helpdesk-service/internal/api/http"
	"github.com/markvl91/helpdesk-service/internal/api/http/handlers"
	"github.com/markvl91/helpdesk-service/internal/auth"
	"github.com/markvl91/helpdesk-service/internal/config"
	"github.com/markvl91/helpdesk-service/internal/events"
	"github.com/markvl91/helpdesk-service/internal/observability"
	"github.com/markvl91/helpdesk-service/internal/persistence"
	"github.com/markvl91/helpdesk-service/internal/repository"
	"github.com/markvl91/helpdesk-service/internal/service"
	"github.com/markvl91/helpdesk-service/internal/worker"
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	employeeRepo := repository.NewEmployeeRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	requestRepo := repository.NewTicketRequestRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	streamPublisher := events.NewRedisStreamPublisher(redis.Client, cfg.Events.StreamName, cfg.Events.MaxLen, logger)
	streamPublisher.RegisterAll(dispatcher)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	authService := service.NewAuthService(service.AuthDependencies{
		Employees:     employeeRepo,
		ResetTokens:   resetRepo,
		Tokens:        tokenManager,
		BcryptCost:    cfg.Auth.BcryptCost,
		ResetTokenTTL: time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute,
		Logger:        logger,
	})
	employeeService := service.NewEmployeeService(service.EmployeeDependencies{
		Employees:  employeeRepo,
		BcryptCost: cfg.Auth.BcryptCost,
		Logger:     logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		Tickets:    ticketRepo,
		Employees:  employeeRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	transitionService := service.NewTransitionService(service.TransitionDependencies{
		Tickets:    ticketRepo,
		Requests:   requestRepo,
		Policy:     service.NewFirstServiceDeskPolicy(employeeRepo),
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	requestService := service.NewRequestService(service.RequestDependencies{
		Requests:   requestRepo,
		Tickets:    ticketRepo,
		Employees:  employeeRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	notificationService := service.NewNotificationService(dispatcher, cfg.Notification, logger)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(tokenManager, employeeRepo)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		ServiceDesk:    handlers.NewServiceDeskHandler(ticketService, transitionService),
		Requests:       handlers.NewRequestsHandler(requestService),
		Employees:      handlers.NewEmployeesHandler(employeeService),
		AuthMiddleware: authMiddleware,
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
