package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"invoice-assistant/internal/api"
	"invoice-assistant/internal/api/handlers"
	"invoice-assistant/internal/repository"
	"invoice-assistant/internal/service"
	"invoice-assistant/pkg/auth"
	"invoice-assistant/pkg/config"
	"invoice-assistant/pkg/database"
	"invoice-assistant/pkg/logger"

	"go.uber.org/zap"
)

// @title Invoice Assistant API
// @version 1.0
// @description Invoice management backend with a chat assistant and document extraction.

// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token from /login.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting invoice assistant",
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("chat_provider", cfg.Chat.Provider),
		zap.String("extractor_provider", cfg.Extractor.Provider),
	)

	// Initialize database
	ctx := context.Background()
	db, err := database.Open(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, appLogger); err != nil {
		appLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	invoiceRepo := repository.NewInvoiceRepository(db, appLogger)

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration)
	if cfg.JWT.SecretKey == "supersecretkey" {
		appLogger.Warn("JWT_SECRET_KEY is the built-in default, set it in production",
			zap.Duration("token_ttl", jwtManager.GetTokenDuration()))
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)

	if cfg.Seed.DemoUsers {
		if _, err := service.NewSeedService(userRepo, authService, appLogger).Seed(ctx); err != nil {
			appLogger.Fatal("Failed to seed demo users", zap.Error(err))
		}
	}

	completer, closeCompleter, err := newChatCompleter(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize chat backend", zap.Error(err))
	}
	defer closeCompleter.Close()

	extractor, err := newExtractor(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize extraction backend", zap.Error(err))
	}

	chatService := service.NewChatService(invoiceRepo, completer, cfg.Chat.MaxTokens, cfg.Chat.Timeout, appLogger)
	invoiceService := service.NewInvoiceService(invoiceRepo, extractor, cfg.Upload.TempDir, cfg.Extractor.Timeout, appLogger)
	adminService := service.NewAdminService(db, userRepo, invoiceRepo, appLogger)

	// Setup router
	app := api.SetupRouter(api.Handlers{
		Auth:    handlers.NewAuthHandler(authService, appLogger),
		Chat:    handlers.NewChatHandler(chatService, appLogger),
		Invoice: handlers.NewInvoiceHandler(invoiceService, appLogger),
		Debug:   handlers.NewDebugHandler(adminService, appLogger),
		Health:  handlers.NewHealthHandler(db),
	}, authService, api.RouterConfig{
		AdminSecret:  cfg.Admin.Secret,
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newChatCompleter(ctx context.Context, cfg *config.Config, appLogger *zap.Logger) (service.ChatCompleter, io.Closer, error) {
	switch cfg.Chat.Provider {
	case config.ProviderGroq:
		if cfg.Chat.APIKey == "" {
			appLogger.Warn("GROQ_API_KEY is not set, chat requests will fail")
		}
		return service.NewGroqClient(&cfg.Chat, appLogger), nopCloser{}, nil
	case config.ProviderGigaChat:
		client, err := service.NewGigaChatClient(ctx, &cfg.GigaChat, appLogger)
		if err != nil {
			return nil, nil, err
		}
		return client, client, nil
	default:
		return nil, nil, fmt.Errorf("unknown chat provider %q", cfg.Chat.Provider)
	}
}

func newExtractor(ctx context.Context, cfg *config.Config, appLogger *zap.Logger) (service.Extractor, error) {
	switch cfg.Extractor.Provider {
	case config.ProviderGemini:
		return service.NewGeminiExtractor(ctx, &cfg.Extractor, appLogger)
	case config.ProviderGigaChat:
		return service.NewGigaChatExtractor(&cfg.GigaChat, appLogger), nil
	default:
		return nil, fmt.Errorf("unknown extractor provider %q", cfg.Extractor.Provider)
	}
}
