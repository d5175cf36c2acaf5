package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	logrustest "github.com/sirupsen/logrus/hooks/test"
)

func TestNewInvalidSpec(t *testing.T) {
	logger, _ := logrustest.NewNullLogger()
	if _, err := New("every tuesday", 0, logger, func(context.Context) {}); err == nil {
		t.Error("expected error for invalid spec")
	}
}

func TestNextBeforeStart(t *testing.T) {
	logger, _ := logrustest.NewNullLogger()
	s, err := New("0 7 * * 1-5", 0, logger, func(context.Context) {})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !s.Next().IsZero() {
		t.Errorf("expected zero next run before start, got %v", s.Next())
	}
}

func TestRunExecutesJob(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the cron tick")
	}

	logger, _ := logrustest.NewNullLogger()
	var runs atomic.Int32
	var hadDeadline atomic.Bool
	s, err := New("@every 1s", time.Minute, logger, func(ctx context.Context) {
		_, ok := ctx.Deadline()
		hadDeadline.Store(ok)
		runs.Add(1)
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	if runs.Load() < 1 {
		t.Error("expected at least one run")
	}
	if !hadDeadline.Load() {
		t.Error("expected job context to carry the timeout")
	}
}
