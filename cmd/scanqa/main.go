package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scan-validator/internal/common/config"
	"scan-validator/internal/common/logger"
	"scan-validator/internal/scansync"
	"scan-validator/internal/validator/engine"
	"scan-validator/internal/validator/report"
	"scan-validator/internal/validator/repository"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"go.uber.org/zap"
)

// ============================================================
// Batch QA runner
// ============================================================

type options struct {
	sync   bool
	out    string
	strict bool
}

func main() {
	var opts options
	flag.BoolVar(&opts.sync, "sync", false, "download new artifacts from SYNC_URL before validating")
	flag.StringVar(&opts.out, "out", "report.xlsx", "path of the xlsx report")
	flag.BoolVar(&opts.strict, "strict", false, "exit with status 1 when any artifact fails a check")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat, "scanqa")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := run(ctx, cfg, opts, zlog)
	if err != nil {
		zlog.Fatal("qa run failed", zap.Error(err))
	}
	if opts.strict && summary.Clean != summary.Total {
		zlog.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, zlog *zap.Logger) (report.Summary, error) {
	start := time.Now()
	storage := scansync.NewFileStorage(cfg.ArtifactsDir)

	var artifacts []engine.Artifact
	var err error
	if opts.sync {
		if cfg.Sync.URL == "" {
			return report.Summary{}, fmt.Errorf("sync requested but SYNC_URL is empty")
		}
		client := scansync.NewClient(scansync.ClientConfig{
			BaseURL: cfg.Sync.URL,
			Token:   cfg.Sync.Token,
			Timeout: time.Duration(cfg.Sync.Timeout) * time.Second,
			Retries: cfg.Sync.Retries,
		}, zlog.Named("sync"))
		artifacts, err = scansync.NewSyncer(client, storage, zlog.Named("sync")).Sync(ctx)
	} else {
		artifacts, err = scansync.LoadArtifacts(storage)
	}
	if err != nil {
		return report.Summary{}, fmt.Errorf("load artifacts: %w", err)
	}

	validator := engine.New(cfg.Workers, zlog.Named("engine"))
	results, err := validator.ValidateBatch(ctx, artifacts)
	if err != nil {
		return report.Summary{}, fmt.Errorf("validate: %w", err)
	}

	db, err := repository.OpenSQLite(cfg.ResultsDBPath)
	if err != nil {
		return report.Summary{}, fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(ctx, cfg.MigrationsPath); err != nil {
		return report.Summary{}, fmt.Errorf("init db: %w", err)
	}

	runRecord := repository.NewRun("cli", len(artifacts))
	if err := repo.SaveRun(ctx, runRecord, results); err != nil {
		return report.Summary{}, fmt.Errorf("save run: %w", err)
	}

	summary := report.Tally(results)
	data, err := report.WriteXLSX(summary, results)
	if err != nil {
		return report.Summary{}, fmt.Errorf("render report: %w", err)
	}
	if err := os.WriteFile(opts.out, data, 0o644); err != nil {
		return report.Summary{}, fmt.Errorf("write report: %w", err)
	}

	fields := []zap.Field{
		zap.String("run_id", runRecord.ID),
		zap.Int("artifacts", summary.Total),
		zap.Int("clean", summary.Clean),
		zap.Int("decode_failures", summary.DecodeFailures),
		zap.String("report", opts.out),
		zap.Duration("elapsed", time.Since(start)),
	}
	for _, c := range summary.Checks {
		if c.Failed > 0 {
			fields = append(fields, zap.Int(string(c.Check), c.Failed))
		}
	}
	zlog.Info("qa run complete", fields...)
	return summary, nil
}
