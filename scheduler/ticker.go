package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// DefaultInterval is how often running clocks are advanced.
const DefaultInterval = time.Second

// ClockTicker advances every running tournament clock to at.
type ClockTicker interface {
	TickAll(ctx context.Context, at time.Time) error
}

// ClockScheduler drives a ClockTicker from a gocron duration job. A tick that
// overruns the interval delays the next one instead of overlapping it.
type ClockScheduler struct {
	scheduler gocron.Scheduler
	ticker    ClockTicker
	interval  time.Duration
	logger    *slog.Logger
}

func NewClockScheduler(ticker ClockTicker, interval time.Duration, logger *slog.Logger) (*ClockScheduler, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &ClockScheduler{
		scheduler: s,
		ticker:    ticker,
		interval:  interval,
		logger:    logger,
	}, nil
}

// Start registers the tick job and starts the scheduler. Ticks run with ctx,
// so cancelling it aborts an in-flight tick.
func (c *ClockScheduler) Start(ctx context.Context) error {
	_, err := c.scheduler.NewJob(
		gocron.DurationJob(c.interval),
		gocron.NewTask(func() {
			if err := c.ticker.TickAll(ctx, time.Now()); err != nil {
				c.logger.Error("clock tick failed", slog.Any("error", err))
			}
		}),
		gocron.WithName("tournament-clock-tick"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule clock tick: %w", err)
	}
	c.scheduler.Start()
	c.logger.Info("clock scheduler started", slog.Duration("interval", c.interval))
	return nil
}

// Shutdown stops the scheduler and waits for a running tick to return.
func (c *ClockScheduler) Shutdown() error {
	if err := c.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	c.logger.Info("clock scheduler stopped")
	return nil
}
