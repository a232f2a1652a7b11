package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/chat"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/email"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/events"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/export"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/llm"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/metrics"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/notification"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/proposal"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/scheduler"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/upload"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/handlers"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/repositories"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/services"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/shared/config"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/shared/database"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/shared/utils"

	_ "github.com/MuhamadAgungGumelar/proposal-ai-be/cmd/api/docs"
)

// @title Proposal AI API
// @version 1.0
// @description Proposal and quotation generation, client/support chat and document export
// @termsOfService http://swagger.io/terms/
// @contact.name API Support
// @contact.email support@cehpoint.co.in
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	// Load config
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.Env, cfg.LogLevel)
	log.Printf("🚀 Starting proposal-ai-api on port %s", cfg.Port)

	if cfg.JWTSecret == "" {
		log.Fatal("❌ JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init database
	db := database.NewDB(cfg.DatabaseURL, !cfg.IsProduction())
	defer db.Close()

	// Chat tree: redis when configured, otherwise in-process
	var chatStore chat.Store
	chatStoreName := "memory"
	rdb, err := database.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if rdb != nil {
		defer rdb.Close()
		chatStore = chat.NewRedisStore(rdb, "chats")
		chatStoreName = "redis"
	} else {
		log.Println("⚠️  REDIS_URL not set, chat lives in memory and is lost on restart")
		chatStore = chat.NewMemoryStore()
	}

	// Event bus
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(ctx, events.ConnectionOptions{
			URL:           cfg.RabbitMQURL,
			Exchange:      cfg.RabbitMQExchange,
			RetryAttempts: 5,
			Delay:         time.Second,
		})
		if err != nil {
			log.Fatalf("❌ Failed to connect to RabbitMQ: %v", err)
		}
		publisher = amqpPublisher
		log.Printf("📨 Publishing events to exchange %s", cfg.RabbitMQExchange)
	} else {
		log.Println("⚠️  RABBITMQ_URL not set, domain events are dropped")
	}
	defer publisher.Close()

	// Export storage
	storage, err := upload.NewProvider(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("❌ Failed to init storage provider: %v", err)
	}
	log.Printf("🗄️  Using storage provider: %s", storage.GetProviderName())
	exportService := export.NewService(storage)

	// Email (optional)
	emailProvider, err := email.NewProvider(cfg.Email)
	if err != nil {
		log.Fatalf("❌ Failed to init email provider: %v", err)
	}
	var salesInbox notification.EmailService
	if emailProvider != nil {
		salesInbox = email.NewService(emailProvider)
		log.Printf("📧 Using Email provider: %s", emailProvider.GetProviderName())
	} else {
		log.Println("⚠️  Email service not configured")
	}
	notificationService := notification.NewService(salesInbox, publisher, cfg.Email.SalesEmail)

	// Generation pipeline
	llmService := llm.NewService(llm.ProviderConfigFrom(cfg.LLM))
	generator := proposal.NewFacade(llmService, proposal.NewPromptBuilder())

	// Auth
	authRepo := auth.NewRepository(db.GORM)
	authService := auth.NewService(authRepo, cfg.JWTSecret)
	if err := authService.EnsureSupportUser(ctx, cfg.SupportEmail, cfg.SupportPassword); err != nil {
		log.Fatalf("❌ Failed to seed support user: %v", err)
	}
	var google auth.GoogleVerifier
	if cfg.GoogleClientID != "" {
		google = auth.NewGoogleOAuthService(cfg.GoogleClientID)
	}

	// Init repositories and services
	auditService := audit.NewService(db.GORM)
	proposalRepo := repositories.NewProposalRepo(db.GORM)
	quotationRepo := repositories.NewQuotationRepo(db.GORM)

	proposalService := services.NewProposalService(proposalRepo, generator, auditService, publisher)
	quotationService := services.NewQuotationService(
		quotationRepo,
		generator,
		exportService,
		auditService,
		notificationService,
		publisher,
		cfg.QuotationValidityDays,
	)

	// Scheduled jobs
	jobs := scheduler.NewScheduler()
	if err := jobs.Add("quotation-expiry", cfg.QuotationExpiryCron, func(ctx context.Context) error {
		_, err := quotationService.ExpireStale(ctx)
		return err
	}); err != nil {
		log.Fatalf("❌ %v", err)
	}
	if cfg.AuditRetentionDays > 0 {
		if err := jobs.Add("audit-retention", cfg.AuditRetentionCron, func(ctx context.Context) error {
			_, err := auditService.DeleteOldLogs(ctx, cfg.AuditRetentionDays)
			return err
		}); err != nil {
			log.Fatalf("❌ %v", err)
		}
	}
	jobs.Start()
	defer jobs.Stop()

	// Init handlers
	chatSender := handlers.NewChatSender(chatStore, publisher)
	authHandler := auth.NewHandler(authService, google)
	healthHandler := handlers.NewHealthHandler(llmService, storage, chatStoreName)
	proposalHandler := handlers.NewProposalHandler(proposalService)
	quotationHandler := handlers.NewQuotationHandler(quotationService)
	chatHandler := handlers.NewChatHandler(chatStore, chatSender)
	supportHandler := handlers.NewSupportHandler(chatStore, chatSender)

	// Init Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Proposal AI API",
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New())
	app.Use(metrics.Middleware())

	// Ops
	app.Get("/health", healthHandler.GetHealth)
	app.Get("/metrics", metrics.Handler())
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Everything below sees an AuthState
	app.Use(auth.Authenticate(authService))
	authHandler.RegisterRoutes(app)
	proposalHandler.RegisterRoutes(app)
	quotationHandler.RegisterRoutes(app)
	chatHandler.RegisterRoutes(app)
	supportHandler.RegisterRoutes(app)
	if local, ok := storage.(*upload.LocalProvider); ok {
		exportFileHandler := handlers.NewExportFileHandler(quotationService, local.BasePath())
		exportFileHandler.RegisterRoutes(app)
	}

	go func() {
		<-ctx.Done()
		log.Println("🛑 Shutting down...")
		chatHandler.Shutdown()
		supportHandler.Shutdown()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("⚠️  Shutdown error: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Server stopped: %v", err)
	}
	log.Println("👋 Server exited")
}
