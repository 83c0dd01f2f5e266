package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"rental-ledger-backend/internal/api/grpc"
	httpapi "rental-ledger-backend/internal/api/http"
	"rental-ledger-backend/internal/app"
	"rental-ledger-backend/internal/config"
	"rental-ledger-backend/internal/logger"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	envFile := flag.String("env-file", ".env", "Optional dotenv file loaded before the configuration")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Failed to load %s: %v", *envFile, err)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Rental Ledger Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "grpc_address", cfg.GetServerAddress(), "http_address", cfg.GetHTTPAddress())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize application", "error", err)
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer a.Close()

	// Drain whatever the previous process left pending, then follow kicks
	go a.Dispatcher.Run(ctx)
	a.Dispatcher.Kick()

	// Set up gRPC server
	lis, err := net.Listen("tcp", cfg.GetServerAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetServerAddress())
		log.Fatalf("Failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer(a.Tokens, grpc.Handlers{
		Booking:      grpc.NewBookingHandler(a.Booking),
		Ledger:       grpc.NewLedgerHandler(a.Ledger),
		Review:       grpc.NewReviewHandler(a.Review),
		Notification: grpc.NewNotificationHandler(a.Notification),
	})

	// Set up REST server
	limiter, err := httpapi.NewRateLimiter(cfg.RateLimit.Rate)
	if err != nil {
		log.Fatalf("Failed to configure rate limit: %v", err)
	}
	router := httpapi.NewRouter(httpapi.Services{
		Booking:      a.Booking,
		Ledger:       a.Ledger,
		Review:       a.Review,
		Notification: a.Notification,
	}, a.Tokens, limiter, a.Health)
	httpServer := &http.Server{
		Addr:              cfg.GetHTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		logger.Info("gRPC server listening", "address", cfg.GetServerAddress())
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		logger.Error("Server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	grpcServer.GracefulStop()
	stop()
	logger.Info("Server stopped. Goodbye!")
}
