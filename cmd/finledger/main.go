package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"finledger/internal/api"
	"finledger/internal/api/handlers"
	"finledger/internal/repository"
	"finledger/internal/service"
	"finledger/pkg/auth"
	"finledger/pkg/cache"
	"finledger/pkg/config"
	"finledger/pkg/logger"
	"finledger/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting ledger service")

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	accountRepo := repository.NewAccountRepository(db, appLogger)
	txRepo := repository.NewTransactionRepository(db, appLogger)
	categoryRepo := repository.NewCategoryRepository(db, appLogger)
	debtRepo := repository.NewDebtRepository(db, appLogger)
	docRepo := repository.NewDocumentRepository(db, appLogger)

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Services
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)

	llmService, err := service.NewLLMService(&cfg.GigaChat, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM service", zap.Error(err))
	}
	defer llmService.Close()

	insightsService := service.NewInsightsService(txRepo, cache.NewMemory(), appLogger)
	categoryService := service.NewCategoryService(categoryRepo, appLogger)
	ledgerService := service.NewLedgerService(txRepo, accountRepo, categoryService, insightsService, cfg.Ledger, appLogger)
	accountService := service.NewAccountService(accountRepo, categoryService, insightsService, appLogger)
	debtService := service.NewDebtService(debtRepo, ledgerService, appLogger)
	importService := service.NewImportService(ledgerService, llmService, llmService, appLogger)
	docService := service.NewDocumentService(docRepo, importService, cfg.Ledger.UploadDir, appLogger)
	chatService := service.NewChatService(llmService, ledgerService, accountRepo, insightsService, appLogger)

	// Handlers
	h := api.Handlers{
		Auth:         handlers.NewAuthHandler(authService, appLogger),
		Accounts:     handlers.NewAccountHandler(accountService, appLogger),
		Transactions: handlers.NewTransactionHandler(ledgerService, appLogger),
		Categories:   handlers.NewCategoryHandler(categoryService, appLogger),
		Debts:        handlers.NewDebtHandler(debtService, appLogger),
		Documents:    handlers.NewDocumentHandler(docService, appLogger),
		Chat:         handlers.NewChatHandler(chatService, appLogger),
		Insights:     handlers.NewInsightsHandler(insightsService, appLogger),
	}

	app := api.SetupRouter(h, jwtManager, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
