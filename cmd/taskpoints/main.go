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

	"github.com/juniperhall/taskpoints/internal/calendar"
	"github.com/juniperhall/taskpoints/internal/database"
	"github.com/juniperhall/taskpoints/internal/logging"
	"github.com/juniperhall/taskpoints/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("TASKPOINTS_LOG_LEVEL"), os.Getenv("TASKPOINTS_LOG_FORMAT"))

	port := os.Getenv("TASKPOINTS_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("TASKPOINTS_DB_PATH")
	if dbPath == "" {
		dbPath = "taskpoints.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	cfg := server.Config{
		AdminPassword: os.Getenv("TASKPOINTS_ADMIN_PASSWORD"),
		Calendar: calendar.Config{
			ClientID:     os.Getenv("TASKPOINTS_GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("TASKPOINTS_GOOGLE_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("TASKPOINTS_GOOGLE_REDIRECT_URL"),
		},
	}

	srv := server.New(db, cfg, logger)

	// Expire stale rate-limit windows so the map does not grow forever.
	cleanupDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			case <-cleanupDone:
				return
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Taskpoints running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	close(cleanupDone)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
