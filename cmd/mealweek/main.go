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

	"github.com/wenqilu/mealweek/internal/database"
	"github.com/wenqilu/mealweek/internal/logging"
	"github.com/wenqilu/mealweek/internal/push"
	"github.com/wenqilu/mealweek/internal/server"
)

func main() {
	port := os.Getenv("MEALWEEK_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("MEALWEEK_DB_PATH")
	if dbPath == "" {
		dbPath = "mealweek.db"
	}

	logger := logging.Setup(os.Getenv("MEALWEEK_LOG_LEVEL"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	pushCfg := push.Config{
		VAPIDPublicKey:  os.Getenv("MEALWEEK_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("MEALWEEK_VAPID_PRIVATE_KEY"),
	}
	if pushCfg.VAPIDPublicKey == "" || pushCfg.VAPIDPrivateKey == "" {
		logger.Info("VAPID keys not set, push notifications disabled")
	}

	srv := server.New(db, pushCfg, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Mealweek running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
