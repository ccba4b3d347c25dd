package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/nestling-app/nestling-server/src/config"
	"github.com/nestling-app/nestling-server/src/database"
	"github.com/nestling-app/nestling-server/src/handlers"
	"github.com/nestling-app/nestling-server/src/logging"
	"github.com/nestling-app/nestling-server/src/middleware"
	"github.com/nestling-app/nestling-server/src/models"
	"github.com/nestling-app/nestling-server/src/repositories"
	"github.com/nestling-app/nestling-server/src/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logging
	logging.Setup(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	log.Info().
		Int("port", cfg.Port).
		Str("log_level", cfg.LogLevel).
		Msg("starting server")

	// Initialize database
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.New(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	log.Info().Msg("database connected")

	// Initialize encryption (optional; empty key disables)
	encryptor, err := services.NewEncryptor(cfg.EncryptionKey)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize encryption")
	}
	if encryptor != nil {
		log.Info().Msg("audit metadata encryption enabled (AES-256-GCM)")
	} else {
		log.Info().Msg("audit metadata encryption disabled (ENCRYPTION_KEY not set)")
	}

	// Repositories
	pool := db.GetPool()
	accountRepo := repositories.NewAccountRepository(pool)
	roleRepo := repositories.NewRoleRepository(pool)
	sessionRepo := repositories.NewSessionRepository(pool)
	invitationRepo := repositories.NewInvitationRepository(pool)
	resetRepo := repositories.NewPasswordResetRepository(pool)
	auditRepo := repositories.NewAuditRepository(pool)

	// Token services. User tokens are stateless; admin tokens are backed by
	// server-side sessions and split into access/refresh policies.
	userTokens := services.NewTokenService(services.TokenPolicy{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.UserIssuer,
		Audience: cfg.UserAudience,
		TTL:      cfg.UserTokenTTL,
	})
	accessTokens := services.NewTokenService(services.TokenPolicy{
		Secret:   []byte(cfg.AdminJWTSecret),
		Issuer:   cfg.AdminIssuer,
		Audience: cfg.AdminAudience,
		TTL:      cfg.AccessTokenTTL,
	})
	refreshTokens := services.NewTokenService(services.TokenPolicy{
		Secret:   []byte(cfg.AdminJWTSecret),
		Issuer:   cfg.AdminIssuer,
		Audience: cfg.AdminAudience + "-refresh",
		TTL:      cfg.RefreshTokenTTL,
	})

	// Services
	passwordService := services.NewPasswordService(cfg.BcryptCost)
	auditService := services.NewAuditService(auditRepo, encryptor)
	authzEngine := services.NewAuthorizationEngine(roleRepo, accountRepo, cfg.PermissionCacheTTL)

	var mailer services.Mailer
	if cfg.MailgunAPIKey != "" && cfg.MailgunDomain != "" {
		mailer = services.NewEmailService(
			cfg.MailgunDomain,
			cfg.MailgunAPIKey,
			cfg.MailgunFromEmail,
			cfg.MailgunFromName,
		)
		log.Info().Str("domain", cfg.MailgunDomain).Msg("Mailgun email service initialized")
	} else {
		mailer = services.NewLogMailer()
		log.Warn().Msg("Mailgun credentials not configured - emails will be logged, not sent")
	}

	adminAuth := services.NewAdminAuthService(
		accountRepo, roleRepo, sessionRepo, invitationRepo, resetRepo,
		passwordService, accessTokens, refreshTokens, auditService, mailer,
		services.AdminAuthConfig{
			LockoutThreshold: cfg.LockoutThreshold,
			LockoutDuration:  cfg.LockoutDuration,
			InvitationTTL:    cfg.InvitationTTL,
			ResetTokenTTL:    cfg.ResetTokenTTL,
			ConsoleBaseURL:   cfg.ConsoleBaseURL,
		},
	)

	cleanupService := services.NewCleanupService(
		sessionRepo, invitationRepo, resetRepo,
		cfg.EnableAutoCleanup, cfg.CleanupInterval, cfg.RefreshTokenTTL,
	)

	// Seed the first super_admin on an empty deployment
	if cfg.BootstrapAdminEmail != "" && cfg.BootstrapAdminPassword != "" {
		bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := adminAuth.BootstrapAdmin(bootCtx, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword); err != nil {
			log.Error().Err(err).Msg("failed to bootstrap admin account")
		}
		bootCancel()
	}

	// Start background services; Start spawns the sweep loop itself
	cleanupService.Start(context.Background())

	// Create Gin router
	router := gin.New()

	// Add middleware
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.Recovery())

	// CORS for the admin console and local development
	allowedOrigins := splitOrigins(cfg.AllowedOrigins)
	corsConfig := cors.Config{
		AllowOriginFunc: func(origin string) bool {
			for _, allowed := range allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return origin == "http://localhost" || origin == "http://localhost:3000"
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Setup routes
	setupRoutes(router, db, adminAuth, auditService, authzEngine, userTokens, cfg)

	// Create HTTP server with timeouts (protect from Slowloris attack)
	srv := &http.Server{
		Addr:              ":" + formatPort(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Int("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGUSR2)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	// Stop cleanup service
	cleanupService.Stop()

	// Graceful shutdown with timeout
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("server shut down successfully")
}

func setupRoutes(
	router *gin.Engine,
	db *database.Database,
	adminAuth *services.AdminAuthService,
	auditService *services.AuditService,
	authzEngine *services.AuthorizationEngine,
	userTokens *services.TokenService,
	cfg *config.Config,
) {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAdminAuthHandler(adminAuth)
	accountHandler := handlers.NewAdminAccountHandler(adminAuth)
	auditHandler := handlers.NewAuditHandler(auditService)

	// Health check endpoints
	router.GET("/health", healthHandler.HandleHealth)
	router.GET("/ready", healthHandler.HandleReady)
	router.GET("/info", healthHandler.HandleInfo)

	// Credential endpoints with per-IP rate limiting. These are the only
	// unauthenticated admin entry points.
	credentialLimit := middleware.NewIPRateLimitingMiddleware(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.LoginRateLimit,
		Burst:             cfg.LoginRateBurst,
	})
	public := router.Group("/admin")
	public.Use(credentialLimit)
	{
		public.POST("/auth/login", authHandler.HandleLogin)
		public.POST("/auth/refresh", authHandler.HandleRefresh)
		public.POST("/auth/password-reset/request", authHandler.HandleRequestPasswordReset)
		public.POST("/auth/password-reset/confirm", authHandler.HandleConfirmPasswordReset)
		public.POST("/invitations/accept", accountHandler.HandleAcceptInvitation)
	}

	// Authenticated admin endpoints
	authed := router.Group("/admin")
	authed.Use(middleware.AdminAuth(adminAuth))
	{
		authed.POST("/auth/logout", authHandler.HandleLogout)
		authed.GET("/auth/me", authHandler.HandleMe)
		authed.POST("/auth/password", authHandler.HandleChangePassword)

		authed.POST("/invitations",
			middleware.RequirePermission(authzEngine, models.PermAdminInvite),
			accountHandler.HandleInvite)
		authed.GET("/invitations",
			middleware.RequirePermission(authzEngine, models.PermAdminInvite),
			accountHandler.HandleListInvitations)

		authed.GET("/accounts",
			middleware.RequirePermission(authzEngine, models.PermAccountsManage),
			accountHandler.HandleListAccounts)
		authed.PUT("/accounts/:id/status",
			middleware.RequirePermission(authzEngine, models.PermAccountsManage),
			accountHandler.HandleSetAccountStatus)

		authed.DELETE("/sessions/:id",
			middleware.RequirePermission(authzEngine, models.PermSessionsRevoke),
			accountHandler.HandleRevokeSession)

		authed.GET("/audit",
			middleware.RequirePermission(authzEngine, models.PermAuditView),
			auditHandler.HandleQuery)
	}

	// End-user API surface authenticates statelessly against the user realm
	api := router.Group("/api/v1")
	api.Use(middleware.UserAuth(userTokens))
	{
		api.GET("/me", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"user_id": middleware.GetUserID(c)})
		})
	}
}

func splitOrigins(origins string) []string {
	var out []string
	for _, origin := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func formatPort(port int) string {
	return fmt.Sprintf("%d", port)
}
