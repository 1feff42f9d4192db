// Package scheduler runs the periodic autosave job.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler manages the background autosave of the calendar data file.
type Scheduler struct {
	cron     *cron.Cron
	logger   *slog.Logger
	saveFunc func(ctx context.Context) error
}

// New creates a scheduler. saveFunc is invoked on every tick.
func New(logger *slog.Logger, saveFunc func(ctx context.Context) error) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.Local)),
		logger:   logger,
		saveFunc: saveFunc,
	}
}

// Start registers the autosave job under the given cron spec (standard
// 5-field syntax or @every descriptors) and starts the scheduler.
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := s.saveFunc(context.Background()); err != nil {
			s.logger.Error("autosave failed", slog.String("error", err.Error()))
			return
		}
		s.logger.Debug("autosave completed")
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", slog.String("spec", spec))
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// IsRunning reports whether any job is registered and the scheduler started.
func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}
