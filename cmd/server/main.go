package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jandoedu/internal/config"
	"jandoedu/internal/database"
	"jandoedu/internal/handlers"
	"jandoedu/internal/logging"
	"jandoedu/internal/metrics"
	"jandoedu/internal/repository"
	"jandoedu/internal/service"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("database connection established", zap.String("type", cfg.DatabaseType))

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	logger.Info("migrations completed")

	// Initialize repositories
	studentRepo := repository.NewStudentRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	resultRepo := repository.NewResultRepository(db)

	// Initialize services
	emailService, err := service.NewEmailService(cfg.SESRegion, cfg.SESFromEmail, cfg.SESFromName, logger)
	if err != nil {
		logger.Fatal("failed to initialize email service", zap.Error(err))
	}
	progressService := service.NewProgressService(progressRepo, studentRepo, emailService, cfg.TeacherEmail, logger)
	resultService := service.NewResultService(db, logger)

	// Initialize handlers
	middleware := handlers.NewMiddleware(logger, 20, 40)
	gateway := handlers.NewGatewayHandler(studentRepo, moduleRepo, resultRepo, progressService, resultService, logger)

	// Setup routes
	mux := http.NewServeMux()
	mux.HandleFunc("GET /exec", gateway.HandleGet)
	mux.HandleFunc("POST /exec", gateway.HandlePost)
	mux.HandleFunc("PUT /exec", gateway.HandlePut)
	mux.Handle("GET /metrics", metrics.Handler())

	handler := middleware.Logging(middleware.RateLimit(mux))

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
