package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"wallet-verify-backend/internal/common/config"
	"wallet-verify-backend/internal/common/logger"
	"wallet-verify-backend/internal/common/middleware"
	"wallet-verify-backend/internal/features/verification/allowlist"
	discorddelivery "wallet-verify-backend/internal/features/verification/delivery/discord"
	httpdelivery "wallet-verify-backend/internal/features/verification/delivery/http"
	"wallet-verify-backend/internal/features/verification/service"
	"wallet-verify-backend/internal/features/verification/token"
	discordplatform "wallet-verify-backend/internal/platform/discord"
	"wallet-verify-backend/internal/platform/thegraph"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	logger.Init("wallet-verify-backend", cfg.Debug)

	// Allowlist: an initial fetch failure is survivable. The store
	// stays empty, which rejects every verification until a later
	// refresh succeeds.
	graphClient := thegraph.NewClient(cfg.Allowlist.SubgraphURL, cfg.Allowlist.PageSize)
	store := allowlist.NewStore(graphClient)
	if count, err := store.Refresh(ctx); err != nil {
		logger.Error().Err(err).Msg("Initial allowlist fetch failed, starting with empty set")
	} else {
		logger.Info().Int("addresses", count).Msg("Allowlist fetched")
	}
	go store.RunRefresher(ctx, cfg.Allowlist.RefreshInterval)

	discordClient, err := discordplatform.NewClient(cfg.Discord.BotToken)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Discord client")
	}

	registry := token.NewRegistry(cfg.Verification.TokenTTL)
	verificationSvc := service.NewService(service.Config{
		GuildID:     cfg.Discord.GuildID,
		RoleID:      cfg.Discord.RoleID,
		FrontendURL: cfg.Verification.FrontendURL,
		QueueSize:   cfg.Verification.QueueSize,
	}, registry, store, discordClient)
	verificationSvc.Start(ctx)

	commandHandler := discorddelivery.NewCommandHandler(verificationSvc, discordClient, cfg.Discord.CommandPrefix)
	commandHandler.Register(discordClient.Session())

	if err := discordClient.Open(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Discord")
	}
	defer discordClient.Close()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	httpdelivery.NewVerificationHandler(verificationSvc).RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "wallet-verify-backend",
			"allowlist": store.Size(),
			"pending":   registry.Pending(),
		})
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}
