package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/copperline/crm/internal/alert/classify"
	"github.com/copperline/crm/internal/alert/compose"
	"github.com/copperline/crm/internal/alert/domain"
	"github.com/copperline/crm/internal/alert/period"
	"github.com/copperline/crm/internal/alert/recipient"
	"github.com/copperline/crm/internal/clock"
	"github.com/copperline/crm/internal/config"
	"github.com/copperline/crm/internal/observability/metrics"
	"github.com/copperline/crm/internal/providers/email"
	userdomain "github.com/copperline/crm/internal/user/domain"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// streakLookbackDays bounds how far back closed deals feed the streak
// shown in quota alert bodies.
const streakLookbackDays = 30

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Config   config.Config
	Repo     domain.Repository
	Users    userdomain.Service
	Source   domain.MetricSource
	Mailer   email.Provider
	Composer *compose.Composer
	Obs      *metrics.Metrics
}

type service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	users    userdomain.Service
	source   domain.MetricSource
	mailer   email.Provider
	composer *compose.Composer
	resolver *recipient.Resolver
	obs      *metrics.Metrics

	expected        map[string]int
	defaultExpected int
}

func New(p Params) domain.Service {
	return &service{
		db:       p.DB,
		log:      p.Log.Named("alert.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		users:    p.Users,
		source:   p.Source,
		mailer:   p.Mailer,
		composer: p.Composer,
		resolver: recipient.NewResolver(
			p.Config.Alert.HRRecipients,
			p.Config.Alert.LeadershipRecipients,
			p.Config.Alert.GracePeriodDays,
		),
		obs:             p.Obs,
		expected:        p.Config.Alert.ExpectedActivities,
		defaultExpected: p.Config.Alert.DefaultActivityCount,
	}
}

// evaluation is what a family-specific evaluate func hands back to the
// shared run loop. A nil evaluation means "no alert for this user".
type evaluation struct {
	result  classify.Result
	cadence domain.Cadence
	message compose.Message
}

type evaluateFunc func(ctx context.Context, user userdomain.User, now time.Time) (*evaluation, error)

func (s *service) RunQuota(ctx context.Context) (domain.RunReport, error) {
	return s.run(ctx, "quota", func(ctx context.Context, user userdomain.User, now time.Time) (*evaluation, error) {
		if user.Role == userdomain.RoleMarketing {
			return nil, nil
		}

		from, to := period.MonthWindow(now)
		actual, err := s.source.SumWonRevenue(ctx, user.ID, from, to)
		if err != nil {
			return nil, fmt.Errorf("sum won revenue: %w", err)
		}

		daysRemaining := period.DaysRemainingInMonth(now)
		result, ok := classify.Quota(actual, user.MonthlyQuota, daysRemaining)
		if !ok {
			return nil, nil
		}

		deals, err := s.source.ClosedDeals(ctx, user.ID, now.AddDate(0, 0, -streakLookbackDays))
		if err != nil {
			return nil, fmt.Errorf("closed deals: %w", err)
		}
		streakWon, streakLength := classify.Streak(deals)

		msg, err := s.composer.Quota(result.Kind, compose.QuotaData{
			UserName:      user.Name,
			Period:        period.Monthly(now),
			Actual:        actual,
			Target:        user.MonthlyQuota,
			Ratio:         classify.Ratio(actual, user.MonthlyQuota),
			DaysRemaining: daysRemaining,
			StreakWon:     streakWon,
			StreakLength:  streakLength,
		})
		if err != nil {
			return nil, err
		}
		return &evaluation{result: result, cadence: domain.CadenceMonthly, message: msg}, nil
	})
}

func (s *service) RunActivity(ctx context.Context) (domain.RunReport, error) {
	return s.run(ctx, "activity", func(ctx context.Context, user userdomain.User, now time.Time) (*evaluation, error) {
		weekStart, _ := period.WeekWindow(now)
		counts, err := s.source.CountActivities(ctx, user.ID, weekStart)
		if err != nil {
			return nil, fmt.Errorf("count activities: %w", err)
		}

		expected, ok := s.expected[user.Role]
		if !ok {
			expected = s.defaultExpected
		}

		result, matched := classify.Activity(counts.Total(), expected)
		if !matched {
			return nil, nil
		}

		data := compose.ActivityData{
			UserName: user.Name,
			Period:   period.Weekly(now),
			Total:    counts.Total(),
			Expected: expected,
			Ratio:    classify.Ratio(int64(counts.Total()), int64(expected)),
		}
		data.Counts.Calls = counts.Calls
		data.Counts.Emails = counts.Emails
		data.Counts.Meetings = counts.Meetings
		data.Counts.Notes = counts.Notes

		msg, err := s.composer.Activity(result.Kind, data)
		if err != nil {
			return nil, err
		}
		return &evaluation{result: result, cadence: domain.CadenceWeekly, message: msg}, nil
	})
}

func (s *service) RunTasks(ctx context.Context) (domain.RunReport, error) {
	return s.run(ctx, "tasks", func(ctx context.Context, user userdomain.User, now time.Time) (*evaluation, error) {
		overdue, err := s.source.OverdueTasks(ctx, user.ID, now)
		if err != nil {
			return nil, fmt.Errorf("overdue tasks: %w", err)
		}

		result, ok := classify.Tasks(len(overdue))
		if !ok {
			return nil, nil
		}

		msg, err := s.composer.Tasks(result.Kind, compose.TaskData{
			UserName: user.Name,
			Overdue:  overdue,
		})
		if err != nil {
			return nil, err
		}
		return &evaluation{result: result, cadence: domain.CadenceDaily, message: msg}, nil
	})
}

func (s *service) RunMarketing(ctx context.Context, cadence domain.Cadence) (domain.RunReport, error) {
	if cadence != domain.CadenceWeekly && cadence != domain.CadenceMonthly {
		return domain.RunReport{}, domain.ErrInvalidCadence
	}

	job := "marketing-" + string(cadence)
	return s.run(ctx, job, func(ctx context.Context, user userdomain.User, now time.Time) (*evaluation, error) {
		if user.Role != userdomain.RoleMarketing {
			return nil, nil
		}

		var from, to time.Time
		if cadence == domain.CadenceWeekly {
			from, to = period.WeekWindow(now)
		} else {
			from, to = period.MonthWindow(now)
		}

		buckets, err := s.source.MarketingOutcomes(ctx, user.ID, from, to)
		if err != nil {
			return nil, fmt.Errorf("marketing outcomes: %w", err)
		}

		report, ok := classify.Marketing(buckets, cadence)
		if !ok {
			return nil, nil
		}

		msg, err := s.composer.Marketing(compose.MarketingData{
			UserName: user.Name,
			Period:   period.Key(now, cadence),
			Report:   report,
		})
		if err != nil {
			return nil, err
		}
		return &evaluation{result: report.Result, cadence: cadence, message: msg}, nil
	})
}

// run is the shared orchestration loop. Per-user failures become run
// report outcomes; only storage-level failures abort the run, leaving
// already-processed users' records in place.
func (s *service) run(ctx context.Context, job string, evaluate evaluateFunc) (domain.RunReport, error) {
	now := s.clock.Now()
	report := domain.RunReport{
		RunID:     ulid.Make().String(),
		Job:       job,
		StartedAt: now,
	}

	log := s.log.With(zap.String("run_id", report.RunID), zap.String("job", job))
	s.obs.IncAlertRun(job)
	defer func() {
		s.obs.ObserveAlertRun(job, s.clock.Now().Sub(now))
	}()

	users, err := s.users.ListMonitored(ctx)
	if err != nil {
		return report, fmt.Errorf("list monitored users: %w", err)
	}

	for _, user := range users {
		outcome, err := s.processUser(ctx, log, user, now, evaluate)
		if err != nil {
			report.FinishedAt = s.clock.Now()
			return report, err
		}

		report.Processed++
		if outcome.Outcome == domain.OutcomeAlertSent {
			report.Sent++
		}
		report.Outcomes = append(report.Outcomes, outcome)
		s.obs.IncAlertOutcome(job, outcome.Outcome)
	}

	report.FinishedAt = s.clock.Now()
	log.Info("alert run finished",
		zap.Int("processed", report.Processed),
		zap.Int("sent", report.Sent),
	)
	return report, nil
}

// processUser walks one user through the skip/fetch/classify/dedup/send
// pipeline. The returned error is reserved for storage failures that
// must abort the whole run.
func (s *service) processUser(ctx context.Context, log *zap.Logger, user userdomain.User, now time.Time, evaluate evaluateFunc) (domain.UserOutcome, error) {
	outcome := domain.UserOutcome{UserID: user.ID, Email: user.Email}
	log = log.With(zap.String("user_id", user.ID.String()))

	exclusion, err := s.repo.ActiveExclusion(ctx, s.db, user.ID, now)
	if err != nil {
		return outcome, fmt.Errorf("active exclusion: %w", err)
	}
	if exclusion != nil {
		outcome.Outcome = domain.OutcomeExcluded
		outcome.Detail = exclusion.Reason
		return outcome, nil
	}

	eval, err := evaluate(ctx, user, now)
	if err != nil {
		log.Warn("metric fetch failed", zap.Error(err))
		outcome.Outcome = domain.OutcomeFetchFailed
		outcome.Detail = err.Error()
		return outcome, nil
	}
	if eval == nil {
		outcome.Outcome = domain.OutcomeNoAlert
		return outcome, nil
	}

	outcome.Kind = eval.result.Kind
	outcome.Severity = eval.result.Severity
	outcome.Period = period.Key(now, eval.cadence)

	sent, err := s.repo.HasSent(ctx, s.db, user.ID, eval.result.Kind, outcome.Period)
	if err != nil {
		return outcome, fmt.Errorf("dedup check: %w", err)
	}
	if sent {
		outcome.Outcome = domain.OutcomeAlreadySent
		return outcome, nil
	}

	subject := s.resolver.ApplyGracePeriod(eval.message.Subject, user.HiredAt, now)
	cc := s.resolver.ResolveCc(eval.result.Severity, user.ManagerEmail)

	messageID, err := s.mailer.Send(ctx, email.Message{
		To:       []string{user.Email},
		Cc:       cc,
		Subject:  subject,
		HTMLBody: eval.message.HTMLBody,
		TextBody: eval.message.TextBody,
	})
	if err != nil {
		log.Warn("alert delivery failed",
			zap.String("kind", eval.result.Kind),
			zap.Error(err),
		)
		outcome.Outcome = domain.OutcomeEmailFailed
		outcome.Detail = err.Error()
		return outcome, nil
	}

	record := &domain.AlertRecord{
		ID:       s.genID.Generate(),
		UserID:   user.ID,
		Kind:     eval.result.Kind,
		Period:   outcome.Period,
		Severity: eval.result.Severity,
		SentAt:   now,
	}
	if err := s.repo.RecordSent(ctx, s.db, record); err != nil {
		if errors.Is(err, domain.ErrAlreadySent) {
			// A concurrent run won the insert race after this one
			// already mailed. The duplicate send is accepted.
			outcome.Outcome = domain.OutcomeAlreadySent
			return outcome, nil
		}
		return outcome, fmt.Errorf("record sent: %w", err)
	}

	log.Info("alert sent",
		zap.String("kind", eval.result.Kind),
		zap.String("period", outcome.Period),
		zap.String("message_id", messageID),
	)
	outcome.Outcome = domain.OutcomeAlertSent
	return outcome, nil
}

func (s *service) CreateExclusion(ctx context.Context, req domain.CreateExclusionRequest) (domain.AlertExclusion, error) {
	userID, err := snowflake.ParseString(req.UserID)
	if err != nil {
		return domain.AlertExclusion{}, domain.ErrInvalidUser
	}
	if _, err := s.users.GetByID(ctx, req.UserID); err != nil {
		return domain.AlertExclusion{}, err
	}
	if !req.EndsAt.After(req.StartsAt) {
		return domain.AlertExclusion{}, domain.ErrInvalidWindow
	}

	exclusion := domain.AlertExclusion{
		ID:        s.genID.Generate(),
		UserID:    userID,
		StartsAt:  req.StartsAt.UTC(),
		EndsAt:    req.EndsAt.UTC(),
		Reason:    req.Reason,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.InsertExclusion(ctx, s.db, &exclusion); err != nil {
		return domain.AlertExclusion{}, err
	}

	s.log.Info("alert exclusion created",
		zap.String("user_id", userID.String()),
		zap.Time("starts_at", exclusion.StartsAt),
		zap.Time("ends_at", exclusion.EndsAt),
	)
	return exclusion, nil
}

func (s *service) ListExclusions(ctx context.Context, userID string) ([]domain.AlertExclusion, error) {
	var id snowflake.ID
	if userID != "" {
		parsed, err := snowflake.ParseString(userID)
		if err != nil {
			return nil, domain.ErrInvalidUser
		}
		id = parsed
	}

	exclusions, err := s.repo.ListExclusions(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	out := make([]domain.AlertExclusion, 0, len(exclusions))
	for _, e := range exclusions {
		out = append(out, *e)
	}
	return out, nil
}

func (s *service) DeleteExclusion(ctx context.Context, id string) error {
	parsed, err := snowflake.ParseString(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	exclusion, err := s.repo.FindExclusion(ctx, s.db, parsed)
	if err != nil {
		return err
	}
	if exclusion == nil {
		return domain.ErrExclusionMissing
	}
	return s.repo.DeleteExclusion(ctx, s.db, parsed)
}
