// Package scheduler drains the job queue on a fixed interval: each tick
// claims a batch of due jobs and fans them out to the executor with bounded
// concurrency.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tidings-app/tidings/config"
	"github.com/tidings-app/tidings/db"
	"github.com/tidings-app/tidings/queue/executor"
)

// Scheduler handles scheduled jobs
type Scheduler struct {
	configProvider *config.Provider
	db             db.DbQueue
	executor       executor.JobExecutor
	logger         *slog.Logger
	ctx            context.Context
	cancel         context.CancelFunc
	shutdownDone   chan struct{}
}

// NewScheduler creates a new scheduler with executor
func NewScheduler(configProvider *config.Provider, dbQueue db.DbQueue, exec executor.JobExecutor, logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		configProvider: configProvider,
		db:             dbQueue,
		executor:       exec,
		logger:         logger,
		ctx:            ctx,
		cancel:         cancel,
		shutdownDone:   make(chan struct{}),
	}
}

// Name identifies the scheduler in shutdown logs.
func (s *Scheduler) Name() string {
	return "JobScheduler"
}

// Start begins the scheduler loop in its own goroutine. Each tick claims and
// processes one batch; ticks never overlap because processJobs blocks the
// loop until the batch settles.
func (s *Scheduler) Start() {
	go func() {
		interval := s.configProvider.Get().Scheduler.Interval.Duration
		s.logger.Info("starting job scheduler", "interval", interval)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				s.logger.Info("job scheduler received shutdown signal")
				close(s.shutdownDone)
				return
			case <-ticker.C:
				s.logger.Debug("scheduler tick - processing jobs")
				s.processJobs()
			}
		}
	}()
}

// Stop signals the scheduler to stop and waits for the loop to exit or the
// context to be canceled, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.logger.Info("stopping job scheduler")
	s.cancel()

	select {
	case <-s.shutdownDone:
		s.logger.Info("job scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Info("job scheduler shutdown timed out")
		return ctx.Err()
	}
}

func (s *Scheduler) processJobs() {
	cfg := s.configProvider.Get().Scheduler

	jobs, err := s.db.Claim(cfg.MaxJobsPerTick)
	if err != nil {
		s.logger.Error("failed to claim jobs", "err", err)
		return
	}
	if len(jobs) == 0 {
		return
	}
	s.logger.Info("claimed jobs", "count", len(jobs))

	// Use the scheduler's context as parent so in-flight jobs receive the
	// shutdown signal.
	g, ctx := errgroup.WithContext(s.ctx)
	g.SetLimit(runtime.NumCPU() * cfg.ConcurrencyMultiplier)

	for _, job := range jobs {
		jobCopy := job
		g.Go(func() error {
			jobCtx, cancel := context.WithTimeout(ctx, cfg.JobTimeout.Duration)
			defer cancel()

			err := s.executor.Execute(jobCtx, *jobCopy)

			switch {
			case err == nil:
				if updateErr := s.db.MarkCompleted(jobCopy.ID); updateErr != nil {
					s.logger.Error("failed to mark job as completed", "jobID", jobCopy.ID, "err", updateErr)
				}
			case errors.Is(err, context.DeadlineExceeded):
				if updateErr := s.db.MarkFailed(jobCopy.ID, "job timeout reached: "+err.Error()); updateErr != nil {
					s.logger.Error("failed to mark job as timed out", "jobID", jobCopy.ID, "err", updateErr)
				}
			case errors.Is(err, context.Canceled):
				if updateErr := s.db.MarkFailed(jobCopy.ID, "scheduler shutting down: "+err.Error()); updateErr != nil {
					s.logger.Error("failed to mark job as interrupted", "jobID", jobCopy.ID, "err", updateErr)
				}
				s.logger.Info("job interrupted", "jobID", jobCopy.ID)
			default:
				if updateErr := s.db.MarkFailed(jobCopy.ID, err.Error()); updateErr != nil {
					s.logger.Error("failed to mark job as failed", "jobID", jobCopy.ID, "err", updateErr)
				}
			}

			// Job failures are settled above; do not abort the batch.
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error("error executing batch jobs", "err", err)
	}
}
