package scheduler

import (
	"context"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/taskhive-dev/taskhive/internal/services"
	"go.uber.org/zap"
)

const (
	defaultStatusInterval   = 30 * time.Minute
	defaultDeadlineInterval = 15 * time.Minute
)

// Scheduler drives the periodic maintenance work: the full status recompute
// and the deadline scan. Each job runs on its own ticker; Stop cancels both.
type Scheduler struct {
	maintenance *services.Maintenance
	status      *services.StatusEngine
	log         *zap.SugaredLogger

	statusInterval   time.Duration
	deadlineInterval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(maintenance *services.Maintenance, status *services.StatusEngine, log *zap.SugaredLogger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		maintenance:      maintenance,
		status:           status,
		log:              log,
		statusInterval:   intervalFromEnv("STATUS_UPDATE_INTERVAL", defaultStatusInterval),
		deadlineInterval: intervalFromEnv("DEADLINE_SCAN_INTERVAL", defaultDeadlineInterval),
		ctx:              ctx,
		cancel:           cancel,
	}
}

// Start launches both jobs. Each runs once immediately, then on its ticker.
func (s *Scheduler) Start() {
	s.log.Infow("Starting scheduler",
		"status_interval", s.statusInterval,
		"deadline_interval", s.deadlineInterval)

	s.runJob("status-recompute", s.statusInterval, func(ctx context.Context) {
		if _, err := s.status.RecomputeAll(ctx); err != nil {
			s.log.Errorw("Status recompute failed", "error", err)
		}
	})

	s.runJob("deadline-scan", s.deadlineInterval, func(ctx context.Context) {
		if _, err := s.maintenance.ScanDeadlines(ctx); err != nil {
			s.log.Errorw("Deadline scan failed", "error", err)
		}
	})
}

// Stop cancels the jobs and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.log.Info("Stopping scheduler")
	s.cancel()
	s.wg.Wait()
	s.log.Info("Scheduler stopped")
}

func (s *Scheduler) runJob(name string, interval time.Duration, run func(context.Context)) {
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		run(s.ctx)

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.log.Debugw("Running scheduled job", "job", name)
				run(s.ctx)
			}
		}
	}()
}

func intervalFromEnv(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)

	if value == "" {
		return fallback
	}

	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}

	// Plain numbers are read as minutes.
	if minutes, err := strconv.Atoi(value); err == nil && minutes > 0 {
		return time.Duration(minutes) * time.Minute
	}

	return fallback
}
