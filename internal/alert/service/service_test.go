package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/copperline/crm/internal/activity/domain"
	"github.com/copperline/crm/internal/alert/compose"
	"github.com/copperline/crm/internal/alert/domain"
	"github.com/copperline/crm/internal/alert/recipient"
	"github.com/copperline/crm/internal/alert/repository"
	"github.com/copperline/crm/internal/clock"
	"github.com/copperline/crm/internal/observability/metrics"
	"github.com/copperline/crm/internal/providers/email"
	taskdomain "github.com/copperline/crm/internal/task/domain"
	userdomain "github.com/copperline/crm/internal/user/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type stubUsers struct {
	monitored []userdomain.User
	listErr   error
}

func (s *stubUsers) Create(context.Context, userdomain.CreateUserRequest) (userdomain.User, error) {
	return userdomain.User{}, nil
}

func (s *stubUsers) Update(context.Context, userdomain.UpdateUserRequest) (userdomain.User, error) {
	return userdomain.User{}, nil
}

func (s *stubUsers) Deactivate(context.Context, string) error { return nil }

func (s *stubUsers) GetByID(_ context.Context, id string) (userdomain.User, error) {
	for _, u := range s.monitored {
		if u.ID.String() == id {
			return u, nil
		}
	}
	return userdomain.User{}, userdomain.ErrNotFound
}

func (s *stubUsers) List(context.Context, userdomain.ListUserRequest) ([]userdomain.User, error) {
	return s.monitored, nil
}

func (s *stubUsers) ListMonitored(context.Context) ([]userdomain.User, error) {
	return s.monitored, s.listErr
}

type stubSource struct {
	revenue  map[snowflake.ID]int64
	counts   map[snowflake.ID]activitydomain.Counts
	overdue  map[snowflake.ID][]taskdomain.OverdueTask
	buckets  map[snowflake.ID][]taskdomain.OutcomeBucket
	deals    map[snowflake.ID][]domain.ClosedDeal
	failUser snowflake.ID
}

var errStubFetch = errors.New("metric store unavailable")

func (s *stubSource) CountActivities(_ context.Context, userID snowflake.ID, _ time.Time) (activitydomain.Counts, error) {
	if userID == s.failUser {
		return activitydomain.Counts{}, errStubFetch
	}
	return s.counts[userID], nil
}

func (s *stubSource) SumWonRevenue(_ context.Context, userID snowflake.ID, _, _ time.Time) (int64, error) {
	if userID == s.failUser {
		return 0, errStubFetch
	}
	return s.revenue[userID], nil
}

func (s *stubSource) OverdueTasks(_ context.Context, userID snowflake.ID, _ time.Time) ([]taskdomain.OverdueTask, error) {
	if userID == s.failUser {
		return nil, errStubFetch
	}
	return s.overdue[userID], nil
}

func (s *stubSource) MarketingOutcomes(_ context.Context, userID snowflake.ID, _, _ time.Time) ([]taskdomain.OutcomeBucket, error) {
	if userID == s.failUser {
		return nil, errStubFetch
	}
	return s.buckets[userID], nil
}

func (s *stubSource) ClosedDeals(_ context.Context, userID snowflake.ID, _ time.Time) ([]domain.ClosedDeal, error) {
	return s.deals[userID], nil
}

type fixture struct {
	svc    *service
	db     *gorm.DB
	node   *snowflake.Node
	clock  *clock.FakeClock
	users  *stubUsers
	source *stubSource
	mailer *email.CaptureProvider
}

func newFixture(t *testing.T, now time.Time) *fixture {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	assert.NoError(t, err)
	db.Exec(`DROP TABLE IF EXISTS alert_records`)
	db.Exec(`DROP TABLE IF EXISTS alert_exclusions`)
	db.Exec(`CREATE TABLE alert_records (
		id BIGINT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		kind TEXT NOT NULL,
		period TEXT NOT NULL,
		severity TEXT NOT NULL,
		sent_at TIMESTAMP NOT NULL
	)`)
	db.Exec(`CREATE UNIQUE INDEX idx_alert_dedup ON alert_records (user_id, kind, period)`)
	db.Exec(`CREATE TABLE alert_exclusions (
		id BIGINT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		starts_at TIMESTAMP NOT NULL,
		ends_at TIMESTAMP NOT NULL,
		reason TEXT,
		created_at TIMESTAMP NOT NULL
	)`)

	composer, err := compose.New()
	assert.NoError(t, err)

	node, _ := snowflake.NewNode(1)
	fc := clock.NewFakeClock(now)
	users := &stubUsers{}
	source := &stubSource{
		revenue: map[snowflake.ID]int64{},
		counts:  map[snowflake.ID]activitydomain.Counts{},
		overdue: map[snowflake.ID][]taskdomain.OverdueTask{},
		buckets: map[snowflake.ID][]taskdomain.OutcomeBucket{},
		deals:   map[snowflake.ID][]domain.ClosedDeal{},
	}
	mailer := &email.CaptureProvider{}

	svc := &service{
		db:       db,
		log:      zaptest.NewLogger(t),
		genID:    node,
		clock:    fc,
		repo:     repository.Provide(),
		users:    users,
		source:   source,
		mailer:   mailer,
		composer: composer,
		resolver: recipient.NewResolver(
			[]string{"hr@copperline.local"},
			[]string{"vp-sales@copperline.local"},
			14,
		),
		obs: metrics.New(),
		expected: map[string]int{
			userdomain.RoleAccountExec: 50,
			userdomain.RoleSDR:         50,
			userdomain.RoleMarketing:   25,
		},
		defaultExpected: 25,
	}

	return &fixture{svc: svc, db: db, node: node, clock: fc, users: users, source: source, mailer: mailer}
}

func (f *fixture) addUser(role string, quota int64) userdomain.User {
	user := userdomain.User{
		ID:           f.node.Generate(),
		Email:        "rep" + f.node.Generate().String() + "@copperline.local",
		Name:         "Test Rep",
		Role:         role,
		MonthlyQuota: quota,
		ManagerEmail: "manager@copperline.local",
		Active:       true,
	}
	f.users.monitored = append(f.users.monitored, user)
	return user
}

func TestRunQuota(t *testing.T) {
	// Five full days left in July, inside the red window.
	now := time.Date(2024, time.July, 26, 9, 0, 0, 0, time.UTC)

	t.Run("quota met sends green once", func(t *testing.T) {
		f := newFixture(t, now)
		user := f.addUser(userdomain.RoleAccountExec, 3000)
		f.source.revenue[user.ID] = 3200
		f.source.deals[user.ID] = []domain.ClosedDeal{
			{Won: true, ClosedAt: now.AddDate(0, 0, -2)},
			{Won: true, ClosedAt: now.AddDate(0, 0, -5)},
		}

		report, err := f.svc.RunQuota(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 1, report.Processed)
		assert.Equal(t, 1, report.Sent)
		assert.Equal(t, "quota", report.Job)
		assert.NotEmpty(t, report.RunID)

		outcome := report.Outcomes[0]
		assert.Equal(t, domain.OutcomeAlertSent, outcome.Outcome)
		assert.Equal(t, domain.KindQuotaGreen, outcome.Kind)
		assert.Equal(t, domain.SeverityGreen, outcome.Severity)
		assert.Equal(t, "2024-07", outcome.Period)

		assert.Equal(t, 1, f.mailer.Count())
		msg := f.mailer.Sent[0]
		assert.Equal(t, []string{user.Email}, msg.To)
		assert.Equal(t, []string{"hr@copperline.local"}, msg.Cc)

		// Same period again, nothing new goes out.
		f.clock.Advance(time.Hour)
		report, err = f.svc.RunQuota(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 0, report.Sent)
		assert.Equal(t, domain.OutcomeAlreadySent, report.Outcomes[0].Outcome)
		assert.Equal(t, 1, f.mailer.Count())
	})

	t.Run("badly behind late in the month goes red", func(t *testing.T) {
		f := newFixture(t, now)
		user := f.addUser(userdomain.RoleAccountExec, 3000)
		f.source.revenue[user.ID] = 1200

		report, err := f.svc.RunQuota(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 1, report.Sent)
		assert.Equal(t, domain.KindQuotaRed, report.Outcomes[0].Kind)

		// Red pulls in hr and leadership.
		assert.Equal(t, []string{"hr@copperline.local", "vp-sales@copperline.local"}, f.mailer.Sent[0].Cc)
	})

	t.Run("marketing roles are not quota carrying", func(t *testing.T) {
		f := newFixture(t, now)
		user := f.addUser(userdomain.RoleMarketing, 0)
		f.source.revenue[user.ID] = 0

		report, err := f.svc.RunQuota(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, domain.OutcomeNoAlert, report.Outcomes[0].Outcome)
		assert.Equal(t, 0, f.mailer.Count())
	})

	t.Run("email failure leaves no record so the next run retries", func(t *testing.T) {
		f := newFixture(t, now)
		user := f.addUser(userdomain.RoleAccountExec, 3000)
		f.source.revenue[user.ID] = 3200
		f.mailer.Fail = true

		report, err := f.svc.RunQuota(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 0, report.Sent)
		assert.Equal(t, domain.OutcomeEmailFailed, report.Outcomes[0].Outcome)

		sent, err := f.svc.repo.HasSent(context.Background(), f.db, user.ID, domain.KindQuotaGreen, "2024-07")
		assert.NoError(t, err)
		assert.False(t, sent)

		f.mailer.Fail = false
		report, err = f.svc.RunQuota(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 1, report.Sent)
		assert.Equal(t, domain.OutcomeAlertSent, report.Outcomes[0].Outcome)
	})

	t.Run("fetch failure only skips the affected user", func(t *testing.T) {
		f := newFixture(t, now)
		broken := f.addUser(userdomain.RoleAccountExec, 3000)
		healthy := f.addUser(userdomain.RoleAccountExec, 3000)
		f.source.failUser = broken.ID
		f.source.revenue[healthy.ID] = 3200

		report, err := f.svc.RunQuota(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 2, report.Processed)
		assert.Equal(t, 1, report.Sent)
		assert.Equal(t, domain.OutcomeFetchFailed, report.Outcomes[0].Outcome)
		assert.Contains(t, report.Outcomes[0].Detail, "metric store unavailable")
		assert.Equal(t, domain.OutcomeAlertSent, report.Outcomes[1].Outcome)
	})

	t.Run("list failure aborts the run", func(t *testing.T) {
		f := newFixture(t, now)
		f.users.listErr = errors.New("users unavailable")

		_, err := f.svc.RunQuota(context.Background())
		assert.Error(t, err)
	})
}

func TestRunActivity(t *testing.T) {
	now := time.Date(2024, time.July, 17, 9, 0, 0, 0, time.UTC)

	f := newFixture(t, now)
	slacking := f.addUser(userdomain.RoleSDR, 0)
	steady := f.addUser(userdomain.RoleAccountExec, 3000)
	f.source.counts[slacking.ID] = activitydomain.Counts{Calls: 10, Emails: 10}
	f.source.counts[steady.ID] = activitydomain.Counts{Calls: 20, Emails: 20, Meetings: 10}

	report, err := f.svc.RunActivity(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, report.Sent)

	outcome := report.Outcomes[0]
	assert.Equal(t, domain.OutcomeAlertSent, outcome.Outcome)
	assert.Equal(t, domain.KindActivityRed, outcome.Kind)
	assert.Equal(t, "2024-W29", outcome.Period)
	assert.Equal(t, domain.OutcomeNoAlert, report.Outcomes[1].Outcome)
}

func TestRunTasks(t *testing.T) {
	now := time.Date(2024, time.July, 17, 8, 0, 0, 0, time.UTC)

	f := newFixture(t, now)
	user := f.addUser(userdomain.RoleAccountExec, 3000)
	hired := now.AddDate(0, 0, -5)
	f.users.monitored[0].HiredAt = &hired
	f.source.overdue[user.ID] = []taskdomain.OverdueTask{
		{ID: f.node.Generate(), Title: "Follow up Acme", DueAt: now.AddDate(0, 0, -3)},
		{ID: f.node.Generate(), Title: "Send proposal", DueAt: now.AddDate(0, 0, -2)},
		{ID: f.node.Generate(), Title: "Book demo", DueAt: now.AddDate(0, 0, -1)},
	}

	report, err := f.svc.RunTasks(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, report.Sent)

	outcome := report.Outcomes[0]
	assert.Equal(t, domain.KindTaskRed, outcome.Kind)
	assert.Equal(t, "2024-W29-D17", outcome.Period)

	// Hired five days ago, still inside the onboarding window.
	msg := f.mailer.Sent[0]
	assert.True(t, len(msg.Subject) > len(recipient.OnboardingPrefix))
	assert.Equal(t, recipient.OnboardingPrefix, msg.Subject[:len(recipient.OnboardingPrefix)])
	assert.Equal(t, []string{"hr@copperline.local", "vp-sales@copperline.local"}, msg.Cc)
}

func TestRunMarketing(t *testing.T) {
	now := time.Date(2024, time.July, 17, 9, 0, 0, 0, time.UTC)

	t.Run("rejects unknown cadence", func(t *testing.T) {
		f := newFixture(t, now)
		_, err := f.svc.RunMarketing(context.Background(), domain.CadenceDaily)
		assert.ErrorIs(t, err, domain.ErrInvalidCadence)
	})

	t.Run("low success ratio goes red", func(t *testing.T) {
		f := newFixture(t, now)
		marketer := f.addUser(userdomain.RoleMarketing, 0)
		f.addUser(userdomain.RoleAccountExec, 3000)
		f.source.buckets[marketer.ID] = []taskdomain.OutcomeBucket{
			{Type: "email_campaign", Total: 20, Recorded: 10, Successes: 1},
		}

		report, err := f.svc.RunMarketing(context.Background(), domain.CadenceWeekly)
		assert.NoError(t, err)
		assert.Equal(t, "marketing-weekly", report.Job)
		assert.Equal(t, 1, report.Sent)

		outcome := report.Outcomes[0]
		assert.Equal(t, domain.KindMarketingRed, outcome.Kind)
		assert.Equal(t, domain.SeverityRed, outcome.Severity)
		assert.Equal(t, "2024-W29", outcome.Period)

		assert.Equal(t, domain.OutcomeNoAlert, report.Outcomes[1].Outcome)
	})

	t.Run("no recorded outcomes means no alert", func(t *testing.T) {
		f := newFixture(t, now)
		marketer := f.addUser(userdomain.RoleMarketing, 0)
		f.source.buckets[marketer.ID] = []taskdomain.OutcomeBucket{
			{Type: "email_campaign", Total: 20, Recorded: 0, Successes: 0},
		}

		report, err := f.svc.RunMarketing(context.Background(), domain.CadenceMonthly)
		assert.NoError(t, err)
		assert.Equal(t, "marketing-monthly", report.Job)
		assert.Equal(t, domain.OutcomeNoAlert, report.Outcomes[0].Outcome)
		assert.Equal(t, 0, f.mailer.Count())
	})
}

func TestRunHonorsExclusions(t *testing.T) {
	now := time.Date(2024, time.July, 26, 9, 0, 0, 0, time.UTC)

	f := newFixture(t, now)
	user := f.addUser(userdomain.RoleAccountExec, 3000)
	f.source.revenue[user.ID] = 3200

	exclusion, err := f.svc.CreateExclusion(context.Background(), domain.CreateExclusionRequest{
		UserID:   user.ID.String(),
		StartsAt: now.AddDate(0, 0, -1),
		EndsAt:   now.AddDate(0, 0, 7),
		Reason:   "pto",
	})
	assert.NoError(t, err)

	report, err := f.svc.RunQuota(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, report.Sent)
	assert.Equal(t, domain.OutcomeExcluded, report.Outcomes[0].Outcome)
	assert.Equal(t, "pto", report.Outcomes[0].Detail)
	assert.Equal(t, 0, f.mailer.Count())

	// Once the window is over, alerts resume.
	assert.NoError(t, f.svc.DeleteExclusion(context.Background(), exclusion.ID.String()))
	report, err = f.svc.RunQuota(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, report.Sent)
}

func TestExclusionValidation(t *testing.T) {
	now := time.Date(2024, time.July, 26, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, now)
	user := f.addUser(userdomain.RoleAccountExec, 3000)

	t.Run("bad user id", func(t *testing.T) {
		_, err := f.svc.CreateExclusion(context.Background(), domain.CreateExclusionRequest{
			UserID:   "not-a-snowflake",
			StartsAt: now,
			EndsAt:   now.AddDate(0, 0, 1),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidUser)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.svc.CreateExclusion(context.Background(), domain.CreateExclusionRequest{
			UserID:   f.node.Generate().String(),
			StartsAt: now,
			EndsAt:   now.AddDate(0, 0, 1),
		})
		assert.ErrorIs(t, err, userdomain.ErrNotFound)
	})

	t.Run("window must move forward", func(t *testing.T) {
		_, err := f.svc.CreateExclusion(context.Background(), domain.CreateExclusionRequest{
			UserID:   user.ID.String(),
			StartsAt: now,
			EndsAt:   now,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidWindow)
	})

	t.Run("delete missing exclusion", func(t *testing.T) {
		err := f.svc.DeleteExclusion(context.Background(), f.node.Generate().String())
		assert.ErrorIs(t, err, domain.ErrExclusionMissing)
	})
}
