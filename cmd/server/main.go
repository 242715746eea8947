package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"graphboard/internal/api"
	"graphboard/internal/app/service"
	"graphboard/internal/common/security"
	"graphboard/internal/domain/repository"
	"graphboard/internal/platform/config"
	"graphboard/internal/platform/database"

	"github.com/go-chi/jwtauth/v5"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Could not load configuration: %v", err)
	}
	log.Println("Configuration loaded.")

	// 2. Initialize Database
	connectCtx, connectCancel := context.WithTimeout(context.Background(), 30*time.Second)
	pool, err := database.Connect(connectCtx, cfg)
	connectCancel()
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	defer pool.Close()

	// 3. Repositories & Services
	jobRepo := repository.NewPgJobRepository(repository.NewSchema(cfg.GraphileWorkerSchema))
	jobService := service.NewJobService(pool, jobRepo)

	// 4. Optional admin authentication
	var tokenAuth *jwtauth.JWTAuth
	if cfg.AuthEnabled() {
		tokenAuth = security.NewTokenAuth(cfg.JWTKey)
		log.Println("Admin token authentication enabled.")
	} else {
		log.Println("WARN: JWT_SECRET is not set, /api/jobs is unauthenticated.")
	}

	// 5. Router & HTTP Server
	router := api.NewRouter(jobService, tokenAuth, cfg.Debug)

	server := &http.Server{
		Addr:         cfg.ServerAddr(),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 6. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", server.Addr, err)
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
