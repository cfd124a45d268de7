package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/city-weather/internal/logger"
)

// Refresher re-fetches whatever is on screen. *display.Controller
// implements it.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler periodically refreshes the displayed weather.
type Scheduler struct {
	scheduler *gocron.Scheduler
	target    Refresher
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler. A non-positive interval disables it.
func New(target Refresher, interval, timeout time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scheduler{
		scheduler: s,
		target:    target,
		interval:  interval,
		timeout:   timeout,
	}
}

// Start schedules the periodic job and starts the underlying scheduler. The
// first run happens one interval from now.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		logger.L().Info("scheduler_disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	logger.L().Info("scheduler_started", "interval", s.interval.String())
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	started := time.Now()
	if err := s.target.Refresh(ctx); err != nil {
		logger.L().Warn("scheduled_refresh_failed", "err", err)
		return
	}
	logger.L().Debug("scheduled_refresh_done", "duration_ms", time.Since(started).Milliseconds())
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil && s.scheduler.IsRunning() {
		s.scheduler.Stop()
	}
}
