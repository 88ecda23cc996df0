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

	"devshub-backend/internal/config"
	"devshub-backend/internal/database"
	"devshub-backend/internal/handlers"
	"devshub-backend/internal/middleware"
	"devshub-backend/internal/repository"
	"devshub-backend/internal/router"
	"devshub-backend/internal/services"
)

func main() {
	log.Println("🚀 Starting DevsHub Study Backend...")

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

	// ──── Step 3: Initialize Redis Client ────
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClient.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	cardRepo := repository.NewCardRepo(pool)
	deckRepo := repository.NewDeckRepo(pool)
	progressRepo := repository.NewProgressRepo(pool)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.FrontendURL)
	studyService := services.NewStudyService(progressRepo, deckRepo, redisClient)
	reviewService := services.NewReviewService(progressRepo)

	// ──── Initialize Handlers ────
	userHandler := handlers.NewUserHandler(userRepo)
	cardHandler := handlers.NewCardHandler(cardRepo)
	deckHandler := handlers.NewDeckHandler(deckRepo, cardRepo, studyService)
	studyHandler := handlers.NewStudyHandler(studyService, reviewService)

	// ──── Step 5: Start Reminder Scheduler ────
	notificationScheduler := services.NewNotificationScheduler(progressRepo, emailService, redisClient)
	notificationScheduler.Start()
	log.Println("✓ Notification scheduler started")

	// ──── Step 6: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		userHandler,
		cardHandler,
		deckHandler,
		studyHandler,
		cfg.FrontendURL,
	)

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
		notificationScheduler.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ DevsHub Study Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
