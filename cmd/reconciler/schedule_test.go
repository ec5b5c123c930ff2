package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchedule(t *testing.T) {
	for _, expr := range []string{"@every 1h", "@hourly", "*/15 * * * *", "0 3 * * 1"} {
		_, err := parseSchedule(expr)
		assert.NoError(t, err, expr)
	}
	for _, expr := range []string{"", "every hour", "* * *", "0 0 0 * * *"} {
		_, err := parseSchedule(expr)
		assert.Error(t, err, expr)
	}
}

func TestNewSchedulerRejectsBadSpec(t *testing.T) {
	_, err := newScheduler(context.Background(), "nope", time.Second, func(context.Context) error { return nil })
	require.Error(t, err)
}

func TestRunPassAppliesTimeout(t *testing.T) {
	var deadline time.Time
	err := runPass(context.Background(), func(ctx context.Context) error {
		d, ok := ctx.Deadline()
		require.True(t, ok)
		deadline = d
		return nil
	}, time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

func TestRunPassSkipsWhenCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := runPass(ctx, func(context.Context) error { called = true; return nil }, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestRunPassReturnsPassError(t *testing.T) {
	boom := errors.New("boom")
	err := runPass(context.Background(), func(context.Context) error { return boom }, 0)
	assert.ErrorIs(t, err, boom)
}

func TestSchedulerRunsPass(t *testing.T) {
	ran := make(chan struct{}, 1)
	c, err := newScheduler(context.Background(), "@every 1s", time.Second, func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})
	require.NoError(t, err)
	c.Start()
	defer c.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("pass did not run")
	}
}
