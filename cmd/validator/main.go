package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scan-validator/internal/common/config"
	"scan-validator/internal/common/logger"
	"scan-validator/internal/common/middleware"
	"scan-validator/internal/validator/engine"
	"scan-validator/internal/validator/handlers"
	"scan-validator/internal/validator/render"
	"scan-validator/internal/validator/repository"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/zap"
)

// ============================================================
// Validator Service
// ============================================================

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat, "validator")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	db, err := repository.OpenSQLite(cfg.ResultsDBPath)
	if err != nil {
		zlog.Fatal("open db", zap.Error(err))
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(context.Background(), cfg.MigrationsPath); err != nil {
		zlog.Fatal("init db", zap.Error(err))
	}

	validator := engine.New(cfg.Workers, zlog.Named("engine"))
	health := handlers.NewHealth(repo, zlog)
	validation := handlers.NewValidation(validator, repo, zlog.Named("handlers"))
	renderHandler := handlers.NewRender(render.NewRenderer(render.DefaultScale), zlog.Named("render"))

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024 * 1024,
		AppName:      "Validator Service",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger(zlog.Named("http")))
	app.Use(middleware.CORS())

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", health.Liveness)
	app.Get("/health/ready", health.Readiness)
	app.Get("/health/startup", health.Startup)

	// ============================================================
	// Validation Routes
	// ============================================================

	validation.Register(app)
	app.Post("/render", renderHandler.RenderSVG)

	// ============================================================
	// Docs Routes
	// ============================================================

	app.Get("/docs/openapi.yaml", handlers.SwaggerSpec)
	app.Get("/docs", handlers.SwaggerUI)

	// ============================================================
	// Server Start
	// ============================================================

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			zlog.Error("shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Port)
	zlog.Info("starting validator service",
		zap.String("addr", addr),
		zap.String("env", cfg.Environment),
	)

	if err := app.Listen(addr); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}
