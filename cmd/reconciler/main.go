package main

// Sweep orphaned blobs on a schedule:
//   go run ./cmd/reconciler
//   go run ./cmd/reconciler -once -dry-run
//
// A reachable DATABASE_URL is required; there is no in-memory fallback.

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"summary-backend/internal/bootstrap"
	"summary-backend/internal/documents"
	"summary-backend/internal/shared/config"
	"summary-backend/internal/shared/telemetry"
)

func main() {
	once := flag.Bool("once", false, "run a single pass and exit")
	dryRun := flag.Bool("dry-run", false, "report orphans without removing them")
	allowEmpty := flag.Bool("allow-empty", false, "remove orphans even when no records exist")
	flag.Parse()

	cfg := config.Load()
	telemetry.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildWithDatabase(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	defer app.Close()

	opts := documents.ReconcileOptions{
		MinAge:     cfg.ReconcileMinAge,
		DryRun:     cfg.ReconcileDryRun || *dryRun,
		AllowEmpty: *allowEmpty,
	}
	pass := func(ctx context.Context) error {
		_, err := app.DocumentsService.Reconcile(ctx, opts)
		return err
	}

	if *once {
		if err := runPass(ctx, pass, cfg.ReconcileTimeout); err != nil {
			log.Fatalf("reconcile: %v", err)
		}
		return
	}

	sched, err := newScheduler(ctx, cfg.ReconcileSchedule, cfg.ReconcileTimeout, pass)
	if err != nil {
		log.Fatalf("reconcile schedule %q: %v", cfg.ReconcileSchedule, err)
	}
	sched.Start()
	telemetry.Info("reconciler.started", map[string]any{
		"schedule": cfg.ReconcileSchedule,
		"min_age":  opts.MinAge.String(),
		"dry_run":  opts.DryRun,
	})

	<-ctx.Done()
	telemetry.Info("reconciler.stopping", nil)

	select {
	case <-sched.Stop().Done():
	case <-time.After(30 * time.Second):
		telemetry.Warn("reconciler.stop_timeout", nil)
	}
}
