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

	"revisit-backend/internal/config"
	"revisit-backend/internal/database"
	"revisit-backend/internal/handlers"
	"revisit-backend/internal/middleware"
	"revisit-backend/internal/repository"
	"revisit-backend/internal/router"
	"revisit-backend/internal/services"
	"revisit-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting Revisit Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	problemRepo := repository.NewProblemRepo(pool)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.FrontendURL)
	encouragementService, err := services.NewEncouragementService(cfg.GeminiAPIKey)
	if err != nil {
		log.Fatalf("✗ Encouragement service initialization failed: %v", err)
	}
	defer encouragementService.Close()

	authService := services.NewAuthService(userRepo, redisClients.Tokens, jwtAuth)
	problemService := services.NewProblemService(problemRepo, userRepo, nil)
	settingsService := services.NewSettingsService(userRepo)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	problemHandler := handlers.NewProblemHandler(problemService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)

	// ──── Step 5: Start Digest Worker Pool ────
	workerPool := worker.NewPool(redisClients.Queue, emailService, encouragementService, cfg.WorkerCount)
	workerPool.Start()
	log.Printf("✓ Worker pool started (%d goroutines)", cfg.WorkerCount)

	digestScheduler := services.NewDigestScheduler(userRepo, problemService, redisClients.Queue, nil)
	digestScheduler.Start()
	log.Println("✓ Digest scheduler started")

	// ──── Step 6: Start HTTP Server ────
	r := router.New(jwtAuth, authHandler, problemHandler, settingsHandler, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		digestScheduler.Stop()
		workerPool.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Revisit Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
