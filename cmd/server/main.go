package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ulemsee/internal/config"
	"ulemsee/internal/database"
	"ulemsee/internal/handlers"
	"ulemsee/internal/middleware"
	"ulemsee/internal/repository"
	"ulemsee/internal/router"
	"ulemsee/internal/services"
	"ulemsee/internal/websocket"
)

func main() {
	log.Println("🚀 Starting Ule Msee API...")
	startedAt := time.Now()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Printf("✓ Environment variables loaded (%s)", cfg.Env)

	// ──── Step 2: Initialize History Store ────
	historyRepo := repository.NewHistoryRepo(cfg.HistoryMaxItems)
	log.Printf("✓ History store ready (max %d items)", cfg.HistoryMaxItems)

	// ──── Step 3: Initialize Redis (optional) ────
	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Printf("✗ Redis unavailable, history events stay local: %v", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Println("✓ Redis connected")
	}

	// ──── Step 4: Initialize Upstream Completer ────
	completer, primary, fallback, closeCompleter, initErr := newCompleter(ctx, cfg)
	if initErr != nil {
		log.Printf("✗ %s client initialization failed: %v", cfg.UpstreamProvider, initErr)
	} else {
		defer closeCompleter()
		log.Printf("✓ %s client initialized (primary %s, fallback %s)", cfg.UpstreamProvider, primary, fallback)
	}

	// ──── Step 5: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClient)
	go wsHub.Run(ctx)
	log.Println("✓ WebSocket hub started")

	// ──── Initialize Services & Handlers ────
	answerService := services.NewAnswerService(completer, initErr, primary, fallback, historyRepo, wsHub)
	historyService := services.NewHistoryService(historyRepo, wsHub)

	requests := middleware.NewRequestCounter()
	info := handlers.NewServerInfo(startedAt, requests)

	questionHandler := handlers.NewQuestionHandler(answerService)
	historyHandler := handlers.NewHistoryHandler(historyService, info)
	statusHandler := handlers.NewStatusHandler(info, answerService)

	// ──── Step 6: Start HTTP Server ────
	r := router.New(questionHandler, historyHandler, statusHandler, wsHub, requests, cfg.FrontendURL)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// Covers primary + backoff + fallback upstream calls.
		WriteTimeout: 2*cfg.UpstreamTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("✓ Ule Msee API ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}

// newCompleter builds the configured upstream client. On failure the returned
// completer is nil and the error explains why questions cannot be answered.
func newCompleter(ctx context.Context, cfg *config.Config) (services.Completer, string, string, func(), error) {
	switch cfg.UpstreamProvider {
	case "gemini":
		g, err := services.NewGeminiCompleter(ctx, cfg.GeminiAPIKey, cfg.GeminiConcurrentReqs, cfg.UpstreamTimeout)
		if err != nil {
			return nil, cfg.GeminiModel, cfg.GeminiFallbackModel, nil, err
		}
		return g, cfg.GeminiModel, cfg.GeminiFallbackModel, g.Close, nil
	case "groq", "":
		g, err := services.NewGroqClient(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.UpstreamTimeout)
		if err != nil {
			return nil, cfg.PrimaryModel, cfg.FallbackModel, nil, err
		}
		return g, cfg.PrimaryModel, cfg.FallbackModel, func() {}, nil
	default:
		return nil, cfg.PrimaryModel, cfg.FallbackModel, nil, fmt.Errorf("unknown upstream provider %q", cfg.UpstreamProvider)
	}
}
