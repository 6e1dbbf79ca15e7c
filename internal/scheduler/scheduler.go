package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/fieldops/internal/config"
)

// Alerter sends the periodic low-stock notification.
type Alerter interface {
	SendLowStockAlert(ctx context.Context) (bool, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	alerter  Alerter
	schedule string
	logger   *zap.Logger
}

// NewScheduler creates a scheduler running in the configured timezone.
// The standard 5-field cron syntax is used (min, hour, dom, month, dow).
func NewScheduler(cfg config.AlertsConfig, alerter Alerter, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		alerter:  alerter,
		schedule: cfg.CronSchedule,
		logger:   logger,
	}, nil
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.sendLowStockAlert); err != nil {
		return fmt.Errorf("schedule low stock alert %q: %w", s.schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendLowStockAlert() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	sent, err := s.alerter.SendLowStockAlert(ctx)
	if err != nil {
		s.logger.Error("failed to send low stock alert", zap.Error(err))
		return
	}
	if sent {
		s.logger.Info("low stock alert sent successfully")
	}
}
