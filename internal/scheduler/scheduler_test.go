package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunTicksUntilCancelled(t *testing.T) {
	var ok, failing atomic.Int32
	s := &Scheduler{
		Interval: 10 * time.Millisecond,
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tasks: []Task{
			{Name: "ok", Run: func(context.Context) error { ok.Add(1); return nil }},
			{Name: "failing", Run: func(context.Context) error { failing.Add(1); return errors.New("boom") }},
		},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()

	err := s.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, ok.Load(), int32(2))
	assert.GreaterOrEqual(t, failing.Load(), int32(2), "a failing task keeps being scheduled")
}

func TestSlowTaskIsNotOverlapped(t *testing.T) {
	var concurrent, peak atomic.Int32
	s := &Scheduler{
		Interval: 5 * time.Millisecond,
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tasks: []Task{{Name: "slow", Run: func(ctx context.Context) error {
			n := concurrent.Add(1)
			defer concurrent.Add(-1)
			if n > peak.Load() {
				peak.Store(n)
			}
			select {
			case <-time.After(30 * time.Millisecond):
			case <-ctx.Done():
			}
			return nil
		}}},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	_ = s.Run(ctx)

	assert.Equal(t, int32(1), peak.Load())
}
