package main

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"summary-backend/internal/shared/telemetry"
)

type passFunc func(ctx context.Context) error

// newScheduler registers pass on the cron expression expr. Five-field expressions
// and descriptors such as "@every 1h" are accepted. Overlapping runs are skipped.
func newScheduler(ctx context.Context, expr string, timeout time.Duration, pass passFunc) (*cron.Cron, error) {
	schedule, err := parseSchedule(expr)
	if err != nil {
		return nil, err
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(schedule, cron.FuncJob(func() {
		if err := runPass(ctx, pass, timeout); err != nil {
			telemetry.Error("reconciler.pass_failed", map[string]any{"err": err})
		}
	}))
	return c, nil
}

func parseSchedule(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return parser.Parse(expr)
}

func runPass(ctx context.Context, pass passFunc, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	start := time.Now()
	err := pass(ctx)
	telemetry.Info("reconciler.pass", map[string]any{
		"duration_ms": time.Since(start).Milliseconds(),
		"ok":          err == nil,
	})
	return err
}
