package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/copperline/crm/internal/clock"
	"github.com/copperline/crm/internal/task/domain"
	"github.com/copperline/crm/internal/task/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *clock.FakeClock) {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	assert.NoError(t, err)
	db.Exec(`DROP TABLE IF EXISTS tasks`)
	db.Exec(`CREATE TABLE tasks (
		id BIGINT PRIMARY KEY,
		owner_id BIGINT NOT NULL,
		title TEXT NOT NULL,
		type TEXT DEFAULT '',
		due_at TIMESTAMP NOT NULL,
		completed_at TIMESTAMP,
		outcome TEXT DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`)

	node, _ := snowflake.NewNode(1)
	fc := clock.NewFakeClock(time.Date(2024, time.July, 17, 9, 0, 0, 0, time.UTC))
	svc := &Service{
		db:    db,
		log:   zaptest.NewLogger(t),
		genID: node,
		clock: fc,
		repo:  repository.Provide(),
	}
	return svc, fc
}

func TestCreate(t *testing.T) {
	svc, fc := newTestService(t)
	ctx := context.Background()
	ownerID := svc.genID.Generate()

	task, err := svc.Create(ctx, domain.CreateTaskRequest{
		OwnerID: ownerID.String(),
		Title:   "Send launch email",
		Type:    domain.TypeEmailCampaign,
		DueAt:   fc.Now().AddDate(0, 0, 2),
	})
	assert.NoError(t, err)
	assert.Equal(t, domain.TypeEmailCampaign, task.Type)
	assert.Nil(t, task.CompletedAt)

	t.Run("bad owner", func(t *testing.T) {
		_, err := svc.Create(ctx, domain.CreateTaskRequest{OwnerID: "x", Title: "t"})
		assert.ErrorIs(t, err, domain.ErrInvalidOwner)
	})

	t.Run("blank title", func(t *testing.T) {
		_, err := svc.Create(ctx, domain.CreateTaskRequest{OwnerID: ownerID.String()})
		assert.ErrorIs(t, err, domain.ErrInvalidTitle)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := svc.Create(ctx, domain.CreateTaskRequest{
			OwnerID: ownerID.String(),
			Title:   "t",
			Type:    "billboard",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidType)
	})
}

func TestComplete(t *testing.T) {
	svc, fc := newTestService(t)
	ctx := context.Background()
	ownerID := svc.genID.Generate()

	task, err := svc.Create(ctx, domain.CreateTaskRequest{
		OwnerID: ownerID.String(),
		Title:   "Call back Acme",
		DueAt:   fc.Now().AddDate(0, 0, 1),
	})
	assert.NoError(t, err)

	fc.Advance(time.Hour)
	completed, err := svc.Complete(ctx, task.ID.String())
	assert.NoError(t, err)
	assert.NotNil(t, completed.CompletedAt)

	_, err = svc.Complete(ctx, task.ID.String())
	assert.ErrorIs(t, err, domain.ErrTaskCompleted)
}

func TestRecordOutcome(t *testing.T) {
	svc, fc := newTestService(t)
	ctx := context.Background()
	ownerID := svc.genID.Generate()

	task, err := svc.Create(ctx, domain.CreateTaskRequest{
		OwnerID: ownerID.String(),
		Title:   "Run webinar",
		Type:    domain.TypeWebinar,
		DueAt:   fc.Now(),
	})
	assert.NoError(t, err)

	t.Run("invalid outcome", func(t *testing.T) {
		_, err := svc.RecordOutcome(ctx, domain.RecordOutcomeRequest{
			ID:      task.ID.String(),
			Outcome: "meh",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidOutcome)
	})

	recorded, err := svc.RecordOutcome(ctx, domain.RecordOutcomeRequest{
		ID:      task.ID.String(),
		Outcome: domain.OutcomeSuccess,
	})
	assert.NoError(t, err)
	assert.Equal(t, domain.OutcomeSuccess, recorded.Outcome)
}

// The overdue and outcome aggregations are what the alert engine reads,
// so they are exercised here against the same schema it runs on.
func TestAggregations(t *testing.T) {
	svc, fc := newTestService(t)
	ctx := context.Background()
	ownerID := svc.genID.Generate()
	now := fc.Now()

	mustCreate := func(title, taskType string, due time.Time) domain.Task {
		task, err := svc.Create(ctx, domain.CreateTaskRequest{
			OwnerID: ownerID.String(),
			Title:   title,
			Type:    taskType,
			DueAt:   due,
		})
		assert.NoError(t, err)
		return task
	}

	late1 := mustCreate("Overdue one", "", now.AddDate(0, 0, -3))
	mustCreate("Overdue two", "", now.AddDate(0, 0, -1))
	done := mustCreate("Done on time", "", now.AddDate(0, 0, -2))
	mustCreate("Not due yet", "", now.AddDate(0, 0, 2))
	_, err := svc.Complete(ctx, done.ID.String())
	assert.NoError(t, err)

	t.Run("overdue excludes completed and future tasks", func(t *testing.T) {
		rows, err := svc.repo.Overdue(ctx, svc.db, ownerID, now)
		assert.NoError(t, err)
		assert.Len(t, rows, 2)
		// Oldest due date first.
		assert.Equal(t, late1.ID, rows[0].ID)
	})

	t.Run("outcomes bucket by type", func(t *testing.T) {
		email1 := mustCreate("Campaign A", domain.TypeEmailCampaign, now)
		mustCreate("Campaign B", domain.TypeEmailCampaign, now)
		webinar := mustCreate("Webinar", domain.TypeWebinar, now)

		for id, outcome := range map[snowflake.ID]string{
			email1.ID:  domain.OutcomeSuccess,
			webinar.ID: domain.OutcomeFailure,
		} {
			_, err := svc.RecordOutcome(ctx, domain.RecordOutcomeRequest{
				ID:      id.String(),
				Outcome: outcome,
			})
			assert.NoError(t, err)
		}

		from, to := now.AddDate(0, 0, -7), now.AddDate(0, 0, 1)
		buckets, err := svc.repo.OutcomesByType(ctx, svc.db, ownerID, from, to)
		assert.NoError(t, err)

		byType := map[string]domain.OutcomeBucket{}
		for _, b := range buckets {
			byType[b.Type] = b
		}
		assert.Equal(t, domain.OutcomeBucket{Type: domain.TypeEmailCampaign, Total: 2, Recorded: 1, Successes: 1}, byType[domain.TypeEmailCampaign])
		assert.Equal(t, domain.OutcomeBucket{Type: domain.TypeWebinar, Total: 1, Recorded: 1, Successes: 0}, byType[domain.TypeWebinar])
		// Untyped tasks never enter marketing buckets.
		assert.NotContains(t, byType, "")
	})
}
