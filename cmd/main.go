package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Abhishekshinde12/Conv-AI/internal/analytics"
	"github.com/Abhishekshinde12/Conv-AI/internal/cache"
	"github.com/Abhishekshinde12/Conv-AI/internal/config"
	"github.com/Abhishekshinde12/Conv-AI/internal/domain"
	"github.com/Abhishekshinde12/Conv-AI/internal/handler"
	"github.com/Abhishekshinde12/Conv-AI/internal/hub"
	"github.com/Abhishekshinde12/Conv-AI/internal/repository"
	"github.com/Abhishekshinde12/Conv-AI/internal/service"
	"github.com/Abhishekshinde12/Conv-AI/pkg/database"
	"github.com/Abhishekshinde12/Conv-AI/pkg/jwt"
	"github.com/Abhishekshinde12/Conv-AI/pkg/log"
	"github.com/Abhishekshinde12/Conv-AI/pkg/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.Log)
	l := log.L()
	l.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("starting support chat bridge")

	// Database
	db, err := database.New(&cfg.Database)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.AutoMigrate(db,
		&domain.UserModel{},
		&domain.ConversationModel{},
		&domain.MessageModel{},
	); err != nil {
		l.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Redis transcript cache
	transcript, err := cache.NewRedisTranscriptCache(cfg.Redis)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer transcript.Close()

	// Repositories
	users := repository.NewGormUserRepository(db)
	conversations := repository.NewGormConversationRepository(db)
	messages := repository.NewGormMessageRepository(db)

	// Auth boundary
	tokens := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	authMiddleware := middleware.NewAuthMiddleware(tokens)

	// Realtime hub
	wsHub := hub.NewHub(cfg.WebSocket)
	go wsHub.Run()

	// Services
	directory := service.NewDirectoryService(users, conversations)
	chat := service.NewChatService(wsHub, messages, transcript)
	history := service.NewHistoryService(conversations, messages, transcript, cfg.Redis.CacheTTL)
	summarizer := analytics.NewGeminiSummarizer(cfg.Analytics)

	// HTTP surface
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(log.GinMiddleware(l))

	httpHandler := handler.NewHandler(directory, history, summarizer, authMiddleware)
	httpHandler.RegisterRoutes(r)

	wsHandler := handler.NewWSHandler(wsHub, chat, tokens, cfg.WebSocket)
	wsHandler.RegisterRoutes(r)

	server := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		l.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("server forced to shutdown")
	}

	l.Info().Msg("stopped")
}
