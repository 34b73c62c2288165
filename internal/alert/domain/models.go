package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Severity string

const (
	SeverityGreen  Severity = "green"
	SeverityYellow Severity = "yellow"
	SeverityRed    Severity = "red"
)

type Cadence string

const (
	CadenceDaily   Cadence = "daily"
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
)

// Alert kinds. The kind plus the period key forms the dedup identity, so
// a user can receive at most one alert of each kind per period.
const (
	KindQuotaGreen  = "quota-green"
	KindQuotaYellow = "quota-yellow"
	KindQuotaRed    = "quota-red"

	KindActivityGreen = "activity-green"
	KindActivityRed   = "activity-red"

	KindTaskYellow = "task-yellow"
	KindTaskRed    = "task-red"

	KindMarketingGreen  = "marketing-green"
	KindMarketingYellow = "marketing-yellow"
	KindMarketingRed    = "marketing-red"
)

// AlertRecord is the audit row written after a successful send. The
// composite unique index is the storage-level guarantee that overlapping
// runs never double-send.
type AlertRecord struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID   snowflake.ID `gorm:"not null;uniqueIndex:idx_alert_dedup,priority:1" json:"user_id"`
	Kind     string       `gorm:"not null;uniqueIndex:idx_alert_dedup,priority:2" json:"kind"`
	Period   string       `gorm:"not null;uniqueIndex:idx_alert_dedup,priority:3" json:"period"`
	Severity Severity     `gorm:"not null" json:"severity"`
	SentAt   time.Time    `gorm:"not null" json:"sent_at"`
}

func (AlertRecord) TableName() string { return "alert_records" }

// AlertExclusion suppresses every alert family for a user while "now"
// falls inside [StartsAt, EndsAt).
type AlertExclusion struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID `gorm:"not null;index" json:"user_id"`
	StartsAt  time.Time    `gorm:"not null" json:"starts_at"`
	EndsAt    time.Time    `gorm:"not null" json:"ends_at"`
	Reason    string       `json:"reason,omitempty"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
}

func (AlertExclusion) TableName() string { return "alert_exclusions" }

func (e AlertExclusion) Covers(now time.Time) bool {
	return !now.Before(e.StartsAt) && now.Before(e.EndsAt)
}

// ClosedDeal is the slim view streak computation works over.
type ClosedDeal struct {
	Won      bool
	ClosedAt time.Time
}

// Per-user run outcomes.
const (
	OutcomeAlertSent   = "alert_sent"
	OutcomeAlreadySent = "already_sent"
	OutcomeNoAlert     = "no_alert"
	OutcomeExcluded    = "excluded"
	OutcomeEmailFailed = "email_failed"
	OutcomeFetchFailed = "fetch_failed"
)

type UserOutcome struct {
	UserID   snowflake.ID `json:"user_id"`
	Email    string       `json:"email"`
	Outcome  string       `json:"outcome"`
	Kind     string       `json:"kind,omitempty"`
	Severity Severity     `json:"severity,omitempty"`
	Period   string       `json:"period,omitempty"`
	Detail   string       `json:"detail,omitempty"`
}

// RunReport is the JSON-serializable aggregate returned by every cron
// entry point.
type RunReport struct {
	RunID      string        `json:"run_id"`
	Job        string        `json:"job"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Processed  int           `json:"processed"`
	Sent       int           `json:"sent"`
	Outcomes   []UserOutcome `json:"outcomes"`
}
