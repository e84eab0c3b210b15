// internal/scheduler/scheduler.go

// Package scheduler warms the listing index on a cron cadence so interactive
// searches hit stored data instead of the external source.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"jobtrail/internal/common/config"
	"jobtrail/internal/common/logger"
	"jobtrail/internal/models"
	"jobtrail/internal/search"
)

// Scheduler runs the periodic listing refresh.
type Scheduler struct {
	cron   *cron.Cron
	search *search.Service
	cfg    config.SchedulerConfig
	logger logger.Logger
}

// New creates the scheduler; call Start to begin ticking.
func New(searchSvc *search.Service, cfg config.SchedulerConfig, log logger.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		search: searchSvc,
		cfg:    cfg,
		logger: log,
	}
}

// Start registers the refresh job and begins the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.cfg.CronSpec, s.runRefresh)
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("listing refresh scheduled", map[string]interface{}{
		"spec":  s.cfg.CronSpec,
		"query": s.cfg.DefaultQuery,
	})
	return nil
}

// Stop halts the cron loop and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	inserted, err := s.search.Refresh(ctx, s.cfg.DefaultQuery, models.SearchFilters{})
	if err != nil {
		s.logger.Error("scheduled listing refresh failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	s.logger.Info("scheduled listing refresh finished", map[string]interface{}{
		"inserted": inserted,
	})
}
