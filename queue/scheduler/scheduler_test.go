package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/tidings-app/tidings/config"
	"github.com/tidings-app/tidings/db"
	"github.com/tidings-app/tidings/db/mock"
	"github.com/tidings-app/tidings/queue"
)

func testProvider(interval time.Duration) *config.Provider {
	cfg := config.NewDefaultConfig()
	cfg.Scheduler.Interval = config.Duration{Duration: interval}
	cfg.Scheduler.JobTimeout = config.Duration{Duration: time.Second}
	return config.NewProvider(cfg)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type funcExecutor func(ctx context.Context, job db.Job) error

func (f funcExecutor) Execute(ctx context.Context, job db.Job) error {
	return f(ctx, job)
}

func TestSchedulerProcessesClaimedJobs(t *testing.T) {
	var mu sync.Mutex
	completed := []int64{}
	claimed := false

	mockDB := &mock.Db{
		ClaimFunc: func(limit int) ([]*db.Job, error) {
			mu.Lock()
			defer mu.Unlock()
			if claimed {
				return []*db.Job{}, nil
			}
			claimed = true
			return []*db.Job{
				{ID: 1, JobType: queue.JobTypeMagicLink, Payload: json.RawMessage(`{}`)},
				{ID: 2, JobType: queue.JobTypeMagicLink, Payload: json.RawMessage(`{}`)},
			}, nil
		},
		MarkCompletedFunc: func(jobID int64) error {
			mu.Lock()
			defer mu.Unlock()
			completed = append(completed, jobID)
			return nil
		},
	}

	exec := funcExecutor(func(ctx context.Context, job db.Job) error {
		return nil
	})

	s := NewScheduler(testProvider(10*time.Millisecond), mockDB, exec, discardLogger())
	s.Start()

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		done := len(completed) == 2
		mu.Unlock()
		if done {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for jobs to complete")
		case <-time.After(10 * time.Millisecond):
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
}

func TestSchedulerMarksFailedJobs(t *testing.T) {
	var mu sync.Mutex
	var failedMsg string
	claimed := false

	mockDB := &mock.Db{
		ClaimFunc: func(limit int) ([]*db.Job, error) {
			mu.Lock()
			defer mu.Unlock()
			if claimed {
				return []*db.Job{}, nil
			}
			claimed = true
			return []*db.Job{{ID: 7, JobType: queue.JobTypeOtp, Payload: json.RawMessage(`{}`)}}, nil
		},
		MarkFailedFunc: func(jobID int64, errMsg string) error {
			mu.Lock()
			defer mu.Unlock()
			failedMsg = errMsg
			return nil
		},
	}

	exec := funcExecutor(func(ctx context.Context, job db.Job) error {
		return errors.New("smtp unreachable")
	})

	s := NewScheduler(testProvider(10*time.Millisecond), mockDB, exec, discardLogger())
	s.Start()

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		done := failedMsg != ""
		mu.Unlock()
		if done {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for job to fail")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if failedMsg != "smtp unreachable" {
		t.Errorf("failed message = %q, want smtp unreachable", failedMsg)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
}

func TestSchedulerStopsPromptly(t *testing.T) {
	s := NewScheduler(testProvider(time.Hour), &mock.Db{}, funcExecutor(func(context.Context, db.Job) error { return nil }), discardLogger())
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
}
