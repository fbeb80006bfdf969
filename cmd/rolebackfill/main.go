// Command rolebackfill grants the applicant role to owners of teacher
// applications that predate it. It is a one-shot job; run it with -dry-run
// first to see what would change.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"coursehub/internal/platform/config"
	"coursehub/internal/platform/logger"
	"coursehub/internal/platform/postgres"
	"coursehub/internal/teacherapp"
	teachermetrics "coursehub/internal/teacherapp/metrics"
	"coursehub/internal/teacherapp/service"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report missing roles without granting them")
	pageSize := flag.Int("page-size", 100, "applications scanned per page")
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, *dryRun, *pageSize); err != nil {
		log.Error("applicant role backfill failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger, dryRun bool, pageSize int) error {
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	stores := teacherapp.PostgresStores(db)
	job, err := service.NewBackfill(
		stores.Applications,
		service.NewRoleManager(stores.Identity, log),
		log,
		teachermetrics.New(prometheus.NewRegistry()),
		pageSize,
	)
	if err != nil {
		return err
	}

	report, err := job.Run(ctx, dryRun)
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		log.Warn("some grants failed; rerun after fixing the listed users", "failed", report.Failed)
	}
	return nil
}
