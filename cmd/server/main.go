package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/openmuni/casework/internal/application/dispatcher"
	"github.com/openmuni/casework/internal/application/service"
	appworkflow "github.com/openmuni/casework/internal/application/workflow"
	"github.com/openmuni/casework/internal/config"
	"github.com/openmuni/casework/internal/infrastructure/identity"
	"github.com/openmuni/casework/internal/infrastructure/notify"
	"github.com/openmuni/casework/internal/infrastructure/persistence/repository"
	"github.com/openmuni/casework/internal/infrastructure/persistence/sqlite"
	"github.com/openmuni/casework/internal/infrastructure/worker"
	httpserver "github.com/openmuni/casework/internal/interfaces/http"
	"github.com/openmuni/casework/pkg/database"
	"github.com/openmuni/casework/pkg/utils"
)

func main() {
	// Load .env if present, before viper reads the environment
	_ = gotenv.Load()

	// Load configuration
	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting casework approval service",
		zap.Int("port", cfg.Server.Port))

	// Initialize database
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	migrator := database.NewMigrator(db, logger)
	if err := migrator.Apply(os.DirFS(cfg.Database.MigrationsDir)); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	kv := utils.NewKVLogger(logger)

	// Initialize repositories and transaction manager
	txManager := sqlite.NewDB(db.DB, logger)
	requestRepo := repository.NewRequestRepository(db.DB, logger)
	benefitRepo := repository.NewBenefitRepository(db.DB, logger)
	caseRepo := repository.NewCaseRepository(db.DB, logger)
	auditRepo := repository.NewAuditRepository(db.DB, logger)
	userRepo := repository.NewUserRepository(db.DB, logger)

	// Initialize event dispatcher and notification delivery
	events := dispatcher.NewDispatcher(dispatcher.WithLogger(kv))
	defer events.Close()

	notifications := service.NewNotificationService(
		notify.NewLogSink(logger),
		cfg.Notification.Recipient,
		kv,
	)
	notifications.Register(events)

	// Initialize application services
	workflowService := appworkflow.NewService(
		requestRepo,
		benefitRepo,
		auditRepo,
		txManager,
		kv,
		appworkflow.WithDispatcher(events),
		appworkflow.WithMinJustificationLen(cfg.Workflow.MinJustificationLen),
	)

	requestService := service.NewRequestService(requestRepo, caseRepo, benefitRepo, auditRepo, txManager, kv,
		service.WithDispatcher(events))
	caseService := service.NewCaseService(caseRepo, kv)
	benefitService := service.NewBenefitService(benefitRepo, caseRepo, kv)

	identityService := identity.NewService(userRepo, identity.Config{
		Secret:   cfg.Auth.JWTSecret,
		Issuer:   cfg.Auth.Issuer,
		TokenTTL: cfg.Auth.TokenTTL,
	}, logger)

	// Background workers
	workers := worker.NewManager(logger)
	workers.Register(worker.NewExpirySweeper(
		requestRepo,
		workflowService,
		cfg.Workflow.SweepInterval,
		cfg.Workflow.ExpiryTTL,
		logger,
		worker.WithBatchSize(cfg.Workflow.SweepBatchSize),
	))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := workers.StartAll(ctx); err != nil {
		logger.Fatal("Failed to start background workers", zap.Error(err))
	}
	defer workers.StopAll()

	// HTTP server
	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		workflowService,
		requestService,
		caseService,
		benefitService,
		identityService,
		kv,
	)

	if err := server.Start(ctx); err != nil {
		logger.Error("HTTP server exited with error", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

func configPath() string {
	if p := os.Getenv("CASEWORK_CONFIG"); p != "" {
		return p
	}
	return "configs/config.yaml"
}
