// Package metricsource is the read side of the alert engine: fresh
// per-run aggregates over the CRM tables, never persisted.
package metricsource

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/copperline/crm/internal/activity/domain"
	"github.com/copperline/crm/internal/alert/domain"
	dealdomain "github.com/copperline/crm/internal/deal/domain"
	taskdomain "github.com/copperline/crm/internal/task/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	ActivityRepo activitydomain.Repository
	DealRepo     dealdomain.Repository
	TaskRepo     taskdomain.Repository
}

type Source struct {
	db           *gorm.DB
	activityRepo activitydomain.Repository
	dealRepo     dealdomain.Repository
	taskRepo     taskdomain.Repository
}

func New(p Params) domain.MetricSource {
	return &Source{
		db:           p.DB,
		activityRepo: p.ActivityRepo,
		dealRepo:     p.DealRepo,
		taskRepo:     p.TaskRepo,
	}
}

func (s *Source) CountActivities(ctx context.Context, userID snowflake.ID, since time.Time) (activitydomain.Counts, error) {
	return s.activityRepo.CountSince(ctx, s.db, userID, since)
}

func (s *Source) SumWonRevenue(ctx context.Context, userID snowflake.ID, from, to time.Time) (int64, error) {
	return s.dealRepo.SumWonAmount(ctx, s.db, userID, from, to)
}

func (s *Source) OverdueTasks(ctx context.Context, userID snowflake.ID, now time.Time) ([]taskdomain.OverdueTask, error) {
	return s.taskRepo.Overdue(ctx, s.db, userID, now)
}

func (s *Source) MarketingOutcomes(ctx context.Context, userID snowflake.ID, from, to time.Time) ([]taskdomain.OutcomeBucket, error) {
	return s.taskRepo.OutcomesByType(ctx, s.db, userID, from, to)
}

func (s *Source) ClosedDeals(ctx context.Context, userID snowflake.ID, since time.Time) ([]domain.ClosedDeal, error) {
	deals, err := s.dealRepo.ClosedSince(ctx, s.db, userID, since)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ClosedDeal, 0, len(deals))
	for _, deal := range deals {
		if deal == nil || deal.ClosedAt == nil {
			continue
		}
		out = append(out, domain.ClosedDeal{
			Won:      deal.Status == dealdomain.StatusWon,
			ClosedAt: *deal.ClosedAt,
		})
	}
	return out, nil
}
