package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Marketing task types. Non-marketing tasks carry an empty type.
const (
	TypeEmailCampaign = "email_campaign"
	TypeSocial        = "social"
	TypeWebinar       = "webinar"
	TypeContent       = "content"
	TypeEvent         = "event"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

func IsValidType(taskType string) bool {
	switch taskType {
	case "", TypeEmailCampaign, TypeSocial, TypeWebinar, TypeContent, TypeEvent:
		return true
	}
	return false
}

type Task struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OwnerID     snowflake.ID `gorm:"not null;index" json:"owner_id"`
	Title       string       `gorm:"not null" json:"title"`
	Type        string       `gorm:"index" json:"type,omitempty"`
	DueAt       time.Time    `gorm:"not null;index" json:"due_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	// Outcome is recorded after the fact; only tasks with a non-empty
	// outcome count toward marketing success ratios.
	Outcome   string    `gorm:"index" json:"outcome,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }

// OverdueTask is the slim row the alert engine reports on.
type OverdueTask struct {
	ID    snowflake.ID `json:"id"`
	Title string       `json:"title"`
	DueAt time.Time    `json:"due_at"`
}

// OutcomeBucket aggregates recorded outcomes for one marketing task type.
type OutcomeBucket struct {
	Type      string `json:"type"`
	Total     int    `json:"total"`
	Recorded  int    `json:"recorded"`
	Successes int    `json:"successes"`
}
