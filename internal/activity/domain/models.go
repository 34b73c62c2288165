package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	KindCall    = "call"
	KindEmail   = "email"
	KindMeeting = "meeting"
	KindNote    = "note"
)

func IsValidKind(kind string) bool {
	switch kind {
	case KindCall, KindEmail, KindMeeting, KindNote:
		return true
	}
	return false
}

type Activity struct {
	ID         snowflake.ID  `gorm:"primaryKey" json:"id"`
	OwnerID    snowflake.ID  `gorm:"not null;index" json:"owner_id"`
	Kind       string        `gorm:"not null;index" json:"kind"`
	LeadID     *snowflake.ID `gorm:"index" json:"lead_id,omitempty"`
	DealID     *snowflake.ID `gorm:"index" json:"deal_id,omitempty"`
	Subject    string        `json:"subject,omitempty"`
	OccurredAt time.Time     `gorm:"not null;index" json:"occurred_at"`
	CreatedAt  time.Time     `gorm:"not null" json:"created_at"`
}

func (Activity) TableName() string { return "activities" }

// Counts breaks an owner's activity volume down by kind.
type Counts struct {
	Calls    int `json:"calls"`
	Emails   int `json:"emails"`
	Meetings int `json:"meetings"`
	Notes    int `json:"notes"`
}

func (c Counts) Total() int {
	return c.Calls + c.Emails + c.Meetings + c.Notes
}
