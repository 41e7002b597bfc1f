package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/samedayramps/template-tiny-church/internal/config"
	"github.com/samedayramps/template-tiny-church/internal/handler"
	"github.com/samedayramps/template-tiny-church/internal/handler/middleware"
	"github.com/samedayramps/template-tiny-church/internal/repository/postgres"
	"github.com/samedayramps/template-tiny-church/internal/service"
	"github.com/samedayramps/template-tiny-church/internal/session"
	"github.com/samedayramps/template-tiny-church/pkg/email"
	"github.com/samedayramps/template-tiny-church/pkg/ratelimit"
	"github.com/samedayramps/template-tiny-church/pkg/token"
	"github.com/samedayramps/template-tiny-church/pkg/validator"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connection
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
		}
	}()
	log.Println("✓ Database connection established")

	// Initialize Redis client
	redisClient, err := initRedis(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		}
	}()
	log.Println("✓ Redis connection established")

	// Initialize validator
	validate := validator.NewValidator()

	// Initialize repositories
	profileRepo := postgres.NewProfileRepository(db)
	tenantRepo := postgres.NewTenantRepository(db)
	impersonationRepo := postgres.NewImpersonationRepository(db)

	// Initialize Redis-backed auth sessions and sign-in rate limiting
	sessionStore := session.NewRedisStore(redisClient)
	signInLimiter := ratelimit.NewSignInLimiter(redisClient, cfg.Auth.MaxFailedLogins, cfg.Auth.LockWindow)

	// Initialize password reset token service
	resetTokens, err := token.NewService([]byte(cfg.Auth.ResetTokenSecret), "tiny-church", cfg.Auth.ResetTokenTTL)
	if err != nil {
		log.Fatalf("Failed to initialize reset token service: %v", err)
	}

	// Initialize email service
	var emailService email.EmailService
	if cfg.Email.Enabled {
		emailService, err = email.NewResendEmailService(&email.EmailConfig{
			APIKey:     cfg.Email.APIKey,
			FromName:   cfg.Email.FromName,
			FromEmail:  cfg.Email.FromEmail,
			ResetURL:   cfg.Email.ResetURL,
			AudienceID: cfg.Email.AudienceID,
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize email service: %v", err)
			log.Println("Email functionality will be disabled")
			emailService = nil
		} else {
			log.Println("✓ Email service initialized (Resend)")
		}
	} else {
		log.Println("ℹ Email service disabled (set EMAIL_ENABLED=true to enable)")
	}

	// Initialize services
	guard := service.NewAdminGuard(profileRepo)
	authService := service.NewAuthService(profileRepo, sessionStore, signInLimiter, resetTokens, emailService, cfg.Session.TTL)
	impersonationService := service.NewImpersonationService(impersonationRepo, profileRepo, guard, cfg.Impersonation.TTL)
	profileService := service.NewProfileService(profileRepo, guard)
	tenantService := service.NewTenantService(tenantRepo, profileRepo, guard)
	subscriptionService := service.NewSubscriptionService(emailService)

	secureCookies := cfg.Server.IsProduction()
	adminHome := "/admin/users"

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, validate, secureCookies)
	userHandler := handler.NewUserHandler(profileService, validate)
	tenantHandler := handler.NewTenantHandler(tenantService, validate)
	impersonationHandler := handler.NewImpersonationHandler(
		impersonationService,
		validate,
		secureCookies,
		adminHome,
		cfg.Impersonation.UserHome,
	)
	dashboardHandler := handler.NewDashboardHandler(profileRepo, tenantRepo, impersonationRepo)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService, validate)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:               "Tiny Church v1.0",
		DisableStartupMessage: false,
		ErrorHandler:          customErrorHandler,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
	})

	// Setup global middlewares. The impersonation gate runs before any
	// route group so an active session blocks admin paths regardless of
	// the caller's role.
	app.Use(middleware.RecoveryMiddleware())
	app.Use(middleware.LoggerMiddleware())
	app.Use(middleware.CORSMiddleware(cfg))
	app.Use(middleware.ImpersonationGate(
		impersonationService,
		cfg.Impersonation.AdminPrefix,
		cfg.Impersonation.UserHome,
	))

	// Setup authorization middlewares
	authMiddleware := middleware.AuthMiddleware(authService)
	requireAdmin := middleware.RequireAdmin()

	// Setup routes
	handler.SetupRoutes(
		app,
		authHandler,
		userHandler,
		tenantHandler,
		impersonationHandler,
		dashboardHandler,
		subscriptionHandler,
		healthHandler,
		authMiddleware,
		requireAdmin,
	)

	// Periodic cleanup of expired impersonation rows. Expiry is already
	// enforced at read time, so this only bounds table growth.
	var sweeper *cron.Cron
	if cfg.Impersonation.SweepExpired {
		sweeper = cron.New()
		if _, err := sweeper.AddFunc("@hourly", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			impersonationService.SweepExpired(ctx)
		}); err != nil {
			log.Fatalf("Failed to schedule impersonation sweep: %v", err)
		}
		sweeper.Start()
		log.Println("✓ Impersonation sweep scheduled (@hourly)")
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Start server in goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		log.Printf("🚀 Server starting on http://localhost%s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		if err := app.Listen(addr); err != nil {
			// Don't use log.Fatalf in goroutine, send error to main
			log.Printf("❌ Server failed to start: %v", err)
			stop()
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	log.Println("⏳ Shutting down server gracefully...")

	if sweeper != nil {
		<-sweeper.Stop().Done()
	}

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✓ Server stopped")
}

// initDB initializes PostgreSQL database connection with retry logic
func initDB(cfg *config.Config) (*sqlx.DB, error) {
	dsn := cfg.Database.DSN()

	var db *sqlx.DB
	var err error

	maxRetries := 5
	retryInterval := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			break
		}

		log.Printf("Failed to connect to database (attempt %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			time.Sleep(retryInterval)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Printf("Error closing database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// initRedis initializes Redis client and verifies connection
func initRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			log.Printf("Error closing Redis after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

// customErrorHandler handles Fiber errors
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Log error for debugging (sanitized)
	log.Printf("Error handling request [%s %s]: %v", c.Method(), c.Path(), err)

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
