package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eunoia-app/eunoia-server/internal/analysis"
	"github.com/eunoia-app/eunoia-server/internal/api"
	"github.com/eunoia-app/eunoia-server/internal/config"
	"github.com/eunoia-app/eunoia-server/internal/db"
	"github.com/eunoia-app/eunoia-server/internal/inference"
	"github.com/eunoia-app/eunoia-server/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting eunoia-server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	// Create inference client and analyzer
	client := inference.NewClient(cfg.HFAPIURL, cfg.HFToken, cfg.HFTimeout)
	analyzer := analysis.NewAnalyzer(client, cfg.SentimentModel, cfg.EmotionModel, cfg.UseRemote)

	// Validate inference API at startup
	if analyzer.RemoteEnabled() {
		log.Println("Validating inference API connection...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := client.HealthCheck(ctx, cfg.SentimentModel); err != nil {
			log.Printf("WARNING: inference API health check failed: %v", err)
			log.Println("Server will start with rule-based analysis as fallback")
		} else {
			log.Printf("Inference API connected: %s (models: %s, %s)", cfg.HFAPIURL, cfg.SentimentModel, cfg.EmotionModel)
		}
		cancel()
	} else {
		log.Println("Remote analysis disabled, using rule-based scorer")
	}

	if cfg.JWTSecret == "" {
		log.Println("WARNING: no JWT secret configured, running in demo auth mode")
	}

	// Create router
	router := api.NewRouter(cfg, database, analyzer, client)

	// Create and start scheduler
	sched, err := scheduler.New(database, analyzer, client, scheduler.Config{
		Timezone:       cfg.Timezone,
		SentimentModel: cfg.SentimentModel,
	})
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	if err := sched.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	// Start server
	addr := ":" + cfg.Port
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down gracefully...")

	// Give ongoing requests 10 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Stopping scheduler...")
	if err := sched.Stop(); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}

	log.Println("Closing database...")
	if err := database.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("Shutdown complete")
}
