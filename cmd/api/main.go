package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"database/sql"

	"github.com/Dan9191/market-planner/internal/config"
	"github.com/Dan9191/market-planner/internal/handler"
	"github.com/Dan9191/market-planner/internal/integrations/backend"
	"github.com/Dan9191/market-planner/internal/middleware"
	"github.com/Dan9191/market-planner/internal/repository"
	"github.com/Dan9191/market-planner/internal/scheduler"
	"github.com/Dan9191/market-planner/internal/service"
	"github.com/Dan9191/market-planner/internal/utils/email"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	repo := repository.NewRepository(db)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = repo.Migrate(ctx)
	cancel()
	if err != nil {
		logger.Fatalf("Failed to migrate draft store: %v", err)
	}

	// Initialize layers
	backendClient, err := backend.NewClient(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to create backend client: %v", err)
	}
	svc := service.NewService(backendClient, repo, logger, cfg)
	h := handler.NewHandler(svc, logger)

	// Due-payment reminders
	if cfg.RemindersEnabled() {
		sender := email.NewSender(cfg, logger)
		reminders := scheduler.NewReminders(svc, sender, cfg.ReminderTo, cfg.BackendTimeout*3, logger)
		runner, err := reminders.Start(cfg.ReminderCron)
		if err != nil {
			logger.Fatalf("Failed to start reminders: %v", err)
		}
		defer runner.Stop()
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      h.Router(middleware.AuthMiddleware(cfg)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
