package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/ILLUVRSE/VendorCatalog/chatbot-service/internal/assistant"
	"github.com/ILLUVRSE/VendorCatalog/chatbot-service/internal/catalog"
	"github.com/ILLUVRSE/VendorCatalog/chatbot-service/internal/config"
	"github.com/ILLUVRSE/VendorCatalog/chatbot-service/internal/httpserver"
	"github.com/ILLUVRSE/VendorCatalog/pkg/logging"
)

func main() {
	cfg, err := config.LoadChatbot()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Fatalf("ping db: %v", err)
	}

	repo := catalog.NewRepository(db)
	asst := assistant.New(assistant.Config{
		BaseURL: cfg.ModelRunnerURL,
		Model:   cfg.Model,
		Timeout: cfg.ModelTimeout,
		Logger:  logger,
	})
	server := httpserver.New(repo, asst, httpserver.Config{
		RequestTimeout: cfg.RequestTimeout,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.Router(),
	}

	go func() {
		log.Printf("Chatbot service listening on %s (model %s)", cfg.Addr, cfg.Model)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	waitForShutdown(httpServer)
}

func waitForShutdown(srv *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
