package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-console/internal/api/http"
	"github.com/spec-kit/support-console/internal/api/http/handlers"
	"github.com/spec-kit/support-console/internal/api/ws"
	"github.com/spec-kit/support-console/internal/auth"
	"github.com/spec-kit/support-console/internal/config"
	"github.com/spec-kit/support-console/internal/events"
	"github.com/spec-kit/support-console/internal/observability"
	"github.com/spec-kit/support-console/internal/persistence"
	"github.com/spec-kit/support-console/internal/realtime"
	"github.com/spec-kit/support-console/internal/repository"
	"github.com/spec-kit/support-console/internal/service"
	"github.com/spec-kit/support-console/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongoStore, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
	if err != nil {
		logger.Fatal("failed to connect mongo", zap.Error(err))
	}
	defer mongoStore.Close(context.Background())

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	checks := []handlers.DependencyCheck{{Name: "mongo", Ping: mongoStore.Ping}}
	if pg.Enabled() {
		checks = append(checks, handlers.DependencyCheck{Name: "postgres", Ping: pg.Ping})
	}

	broker, brokerChecks, closeBroker, err := buildBroker(*cfg, logger)
	if err != nil {
		logger.Fatal("failed to start realtime broker", zap.Error(err))
	}
	defer closeBroker()
	checks = append(checks, brokerChecks...)

	db := mongoStore.Database()
	chatRepo := repository.NewChatRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	credentialRepo := repository.NewCredentialRepository(db)
	userRepo := repository.NewUserRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	kycRepo := repository.NewKYCRepository(db)

	var historyRepo repository.ChatHistoryRepository
	if pg.Enabled() {
		historyRepo = repository.NewChatHistoryRepository(pg.PoolHandle())
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	auditService := service.NewAuditService(dispatcher, historyRepo, logger)
	worker.StartAuditWorker(auditService)

	directory := service.NewDirectoryService(service.DirectoryDependencies{
		ChatRepo:    chatRepo,
		MessageRepo: messageRepo,
		Broker:      broker,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	transcript := service.NewTranscriptService(service.TranscriptDependencies{
		ChatRepo:    chatRepo,
		MessageRepo: messageRepo,
		Broker:      broker,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	gate := service.NewAccessGate(*cfg, service.AccessGateDependencies{
		AdminRepo:      adminRepo,
		CredentialRepo: credentialRepo,
		Logger:         logger,
	})
	records := service.NewRecordsService(service.RecordsDependencies{
		UserRepo:        userRepo,
		AccountRepo:     accountRepo,
		TransactionRepo: transactionRepo,
		KYCRepo:         kycRepo,
		Logger:          logger,
	})
	dashboard := service.NewDashboardService(service.DashboardDependencies{
		UserRepo:  userRepo,
		KYCRepo:   kycRepo,
		ChatRepo:  chatRepo,
		UserLimit: cfg.Dashboard.UserLimit,
		Logger:    logger,
	})

	authMiddleware := auth.NewAuthMiddleware(gate.TokenManager(), gate)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks...),
		Auth:           handlers.NewAuthHandler(gate),
		Chats:          handlers.NewChatsHandler(directory, transcript, auditService),
		Records:        handlers.NewRecordsHandler(records, directory),
		Dashboard:      handlers.NewDashboardHandler(dashboard),
		Admins:         handlers.NewAdminsHandler(gate),
		AuthMiddleware: authMiddleware,
	})

	gateway := ws.NewGateway(authMiddleware, directory, transcript, logger)
	wsServer := &http.Server{
		Addr:              cfg.App.WSAddr(),
		Handler:           gateway.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()
	go func() {
		logger.Info("websocket gateway listening", zap.String("addr", cfg.App.WSAddr()))
		if err := wsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("websocket listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	_ = wsServer.Shutdown(shutdownCtx)
	_ = app.ShutdownWithContext(shutdownCtx)
}

// buildBroker selects the change feed transport. Memory only fans out within this process.
func buildBroker(cfg config.Config, logger *zap.Logger) (realtime.Broker, []handlers.DependencyCheck, func(), error) {
	switch cfg.Realtime.Broker {
	case config.BrokerRedis:
		rdb := persistence.NewRedis(cfg.Redis, logger)
		broker := realtime.NewRedisBroker(rdb.Client, cfg.Realtime.ChannelPrefix, logger)
		check := handlers.DependencyCheck{Name: "redis", Ping: rdb.Ping}
		return broker, []handlers.DependencyCheck{check}, func() {
			_ = broker.Close()
			rdb.Close()
		}, nil
	case config.BrokerNATS:
		nc, err := persistence.NewNATS(cfg.NATS, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		broker := realtime.NewNATSBroker(nc.Conn, cfg.Realtime.ChannelPrefix, logger)
		check := handlers.DependencyCheck{Name: "nats", Ping: func(context.Context) error { return nc.Ping() }}
		return broker, []handlers.DependencyCheck{check}, func() {
			_ = broker.Close()
			nc.Close()
		}, nil
	default:
		broker := realtime.NewMemoryBroker()
		return broker, nil, func() { _ = broker.Close() }, nil
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
