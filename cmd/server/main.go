package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"miniblog/internal/api"
	"miniblog/internal/app/service"
	"miniblog/internal/common/security"
	"miniblog/internal/domain/repository"
	"miniblog/internal/platform/cache"
	"miniblog/internal/platform/config"
	"miniblog/internal/platform/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	log.Println("Configuration loaded.")

	// 2. Initialize JWT
	tokens := security.NewTokenManager(cfg.JWTKey, cfg.JWTExp)

	// 3. Initialize Database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()
	log.Println("Database connected.")

	if err := database.RunMigrations(context.Background(), db); err != nil {
		log.Fatalf("Migrations failed: %v", err)
	}
	log.Println("Migrations applied.")

	// 4. Initialize Redis (optional, the post cache degrades to direct reads)
	var postCache *cache.PostCache
	if rdb, err := cache.Connect(cfg); err != nil {
		log.Printf("Redis unavailable, post cache disabled: %v", err)
	} else {
		defer rdb.Close()
		postCache = cache.NewPostCache(rdb, cfg.PostCacheTTL)
		log.Println("Redis connected.")
	}

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(db)
	postRepo := repository.NewPgPostRepository(db)

	// 6. Initialize Services
	authService := service.NewAuthService(userRepo, tokens, cfg.MaxLoginAttempts, cfg.LockoutDuration)
	postService := service.NewPostService(postRepo, postCache)

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(cfg, tokens, authService, postService)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
		}
	}()

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
