// Package scheduler fires the alert runs on their cron cadences: tasks
// and quota daily, activity and marketing weekly, marketing again
// monthly.
package scheduler

import (
	"context"
	"errors"
	"time"

	alertdomain "github.com/copperline/crm/internal/alert/domain"
	"github.com/copperline/crm/internal/clock"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	AlertSvc alertdomain.Service
	Config   Config `optional:"true"`
}

type Scheduler struct {
	engine   *cron.Cron
	log      *zap.Logger
	cfg      Config
	clock    clock.Clock
	alertSvc alertdomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.AlertSvc == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		engine:   cron.New(),
		log:      p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:      p.Config.withDefaults(),
		clock:    p.Clock,
		alertSvc: p.AlertSvc,
	}, nil
}

func (s *Scheduler) RegisterJobs() error {
	jobs := []struct {
		Name string
		Spec string
		Run  func(context.Context) (alertdomain.RunReport, error)
	}{
		{"tasks", s.cfg.TaskSpec, s.alertSvc.RunTasks},
		{"quota", s.cfg.QuotaSpec, s.alertSvc.RunQuota},
		{"activity", s.cfg.ActivitySpec, s.alertSvc.RunActivity},
		{"marketing-weekly", s.cfg.MarketingWeeklySpec, func(ctx context.Context) (alertdomain.RunReport, error) {
			return s.alertSvc.RunMarketing(ctx, alertdomain.CadenceWeekly)
		}},
		{"marketing-monthly", s.cfg.MarketingMonthlySpec, func(ctx context.Context) (alertdomain.RunReport, error) {
			return s.alertSvc.RunMarketing(ctx, alertdomain.CadenceMonthly)
		}},
	}

	for _, job := range jobs {
		job := job
		if _, err := s.engine.AddFunc(job.Spec, func() {
			s.runJob(job.Name, job.Run)
		}); err != nil {
			return err
		}
	}
	return nil
}

// runJob wraps one alert run with a bounded timeout and structured run
// logging. A failed run is logged, never propagated; the next trigger
// retries whatever was left undone.
func (s *Scheduler) runJob(name string, fn func(context.Context) (alertdomain.RunReport, error)) {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	log := s.log.With(zap.String("job", name))
	report, err := fn(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn("job timed out",
				zap.Duration("timeout", s.cfg.JobTimeout),
				zap.Error(err),
			)
			return
		}
		log.Error("job failed", zap.Error(err))
		return
	}

	log.Info("job finished",
		zap.String("run_id", report.RunID),
		zap.Int("processed", report.Processed),
		zap.Int("sent", report.Sent),
		zap.Duration("elapsed", s.clock.Now().Sub(start)),
	)
}

func (s *Scheduler) Start() {
	s.log.Info("cron engine starting")
	s.engine.Start()
}

func (s *Scheduler) Stop(ctx context.Context) error {
	s.log.Info("cron engine stopping")
	stopped := s.engine.Stop()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(30 * time.Second):
		return nil
	}
}
