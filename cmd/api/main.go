package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/installment-ledger/internal/config"
	"github.com/Dan9191/installment-ledger/internal/handler"
	"github.com/Dan9191/installment-ledger/internal/integrations/bcb"
	"github.com/Dan9191/installment-ledger/internal/ledger"
	"github.com/Dan9191/installment-ledger/internal/scheduler"
	"github.com/Dan9191/installment-ledger/internal/seed"
	"github.com/Dan9191/installment-ledger/internal/service"
	"github.com/Dan9191/installment-ledger/internal/utils/email"
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

	// Load schedules
	loader := seed.NewLoader(cfg.InstallmentCount)
	schedules, err := loader.Schedules()
	if err != nil {
		logger.Fatalf("Failed to load schedules: %v", err)
	}
	for buyer, schedule := range schedules {
		logger.Infof("Loaded %d installments for %s", len(schedule), buyer)
	}

	// Initialize layers
	l := ledger.New(schedules)
	bcbClient := bcb.NewClient(cfg, logger)
	sender := email.NewSender(cfg, logger)
	if !sender.Enabled() {
		logger.Warn("SMTP_HOST not set, receipt emails are disabled")
	}
	svc := service.NewService(l, loader, bcbClient, sender, logger, cfg)
	h := handler.NewHandler(svc)

	// Overdue sweep
	if cfg.OverdueSweepSpec != "" {
		sweeper := scheduler.NewOverdueSweeper(l, logger)
		c, err := sweeper.Start(cfg.OverdueSweepSpec)
		if err != nil {
			logger.Fatalf("Failed to start overdue sweep: %v", err)
		}
		defer c.Stop()
		logger.Infof("Overdue sweep scheduled: %s", cfg.OverdueSweepSpec)
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      h.Router(cfg),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	logger.Info("Server stopped")
}
