package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SweepSpec fires once a day at midnight in the scheduler's zone
const SweepSpec = "@midnight"

// Sweeper runs one expiry pass and reports how many requests it expired.
type Sweeper interface {
	ProcessExpiredLocates(ctx context.Context) (int, error)
}

// ExpiryScheduler runs the expiry sweep every day at midnight in its zone.
type ExpiryScheduler struct {
	sweeper  Sweeper
	location *time.Location
	schedule cron.Schedule
	logger   *zap.Logger
	now      func() time.Time
}

// NewExpiryScheduler creates a scheduler that fires at local midnight of location
func NewExpiryScheduler(sweeper Sweeper, location *time.Location, logger *zap.Logger) *ExpiryScheduler {
	if location == nil {
		location = time.Local
	}
	schedule, err := cron.ParseStandard(SweepSpec)
	if err != nil {
		logger.Fatal("Invalid expiry sweep schedule", zap.String("spec", SweepSpec), zap.Error(err))
	}
	return &ExpiryScheduler{
		sweeper:  sweeper,
		location: location,
		schedule: schedule,
		logger:   logger,
		now:      time.Now,
	}
}

// NextRun returns the first midnight strictly after now in the scheduler's zone.
func (s *ExpiryScheduler) NextRun(now time.Time) time.Time {
	return s.schedule.Next(now.In(s.location))
}

// newCron registers the sweep on a stopped cron instance bound to ctx
func (s *ExpiryScheduler) newCron(ctx context.Context) (*cron.Cron, error) {
	cronLogger := zapCronLogger{logger: s.logger.Sugar()}
	c := cron.New(
		cron.WithLocation(s.location),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	if _, err := c.AddFunc(SweepSpec, func() { s.RunOnce(ctx) }); err != nil {
		return nil, err
	}
	return c, nil
}

// Run blocks until ctx is cancelled, sweeping once per day. A sweep in
// progress is allowed to finish before Run returns.
func (s *ExpiryScheduler) Run(ctx context.Context) {
	c, err := s.newCron(ctx)
	if err != nil {
		s.logger.Error("Failed to schedule expiry sweep", zap.Error(err))
		return
	}

	c.Start()
	s.logger.Info("Expiry scheduler started",
		zap.String("timezone", s.location.String()),
		zap.Time("next_run", s.NextRun(s.now())),
	)

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("Expiry scheduler stopped")
}

// RunOnce performs a single sweep and logs the outcome
func (s *ExpiryScheduler) RunOnce(ctx context.Context) int {
	start := s.now()
	count, err := s.sweeper.ProcessExpiredLocates(ctx)
	if err != nil {
		s.logger.Error("Expiry sweep failed",
			zap.Int("expired", count),
			zap.Error(err),
		)
		return count
	}

	s.logger.Info("Expiry sweep finished",
		zap.Int("expired", count),
		zap.Duration("duration", s.now().Sub(start)),
	)
	return count
}

// zapCronLogger routes cron's own logging through zap
type zapCronLogger struct {
	logger *zap.SugaredLogger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
