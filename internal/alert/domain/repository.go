package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/copperline/crm/internal/activity/domain"
	taskdomain "github.com/copperline/crm/internal/task/domain"
	"gorm.io/gorm"
)

// Repository persists alert records and exclusions. RecordSent returns
// ErrAlreadySent when the composite unique index rejects the insert; the
// HasSent check is only a fast path, the index is the real guard.
type Repository interface {
	HasSent(ctx context.Context, db *gorm.DB, userID snowflake.ID, kind, period string) (bool, error)
	RecordSent(ctx context.Context, db *gorm.DB, record *AlertRecord) error

	ActiveExclusion(ctx context.Context, db *gorm.DB, userID snowflake.ID, now time.Time) (*AlertExclusion, error)
	InsertExclusion(ctx context.Context, db *gorm.DB, exclusion *AlertExclusion) error
	ListExclusions(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]*AlertExclusion, error)
	FindExclusion(ctx context.Context, db *gorm.DB, id snowflake.ID) (*AlertExclusion, error)
	DeleteExclusion(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}

// MetricSource supplies the raw counts the classifiers band into
// severities. Implementations read the CRM tables; the orchestrator
// never queries them directly.
type MetricSource interface {
	CountActivities(ctx context.Context, userID snowflake.ID, since time.Time) (activitydomain.Counts, error)
	SumWonRevenue(ctx context.Context, userID snowflake.ID, from, to time.Time) (int64, error)
	OverdueTasks(ctx context.Context, userID snowflake.ID, now time.Time) ([]taskdomain.OverdueTask, error)
	MarketingOutcomes(ctx context.Context, userID snowflake.ID, from, to time.Time) ([]taskdomain.OutcomeBucket, error)
	ClosedDeals(ctx context.Context, userID snowflake.ID, since time.Time) ([]ClosedDeal, error)
}
