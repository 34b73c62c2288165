package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StageProspecting   = "prospecting"
	StageQualification = "qualification"
	StageProposal      = "proposal"
	StageNegotiation   = "negotiation"
	StageClosed        = "closed"
)

const (
	StatusOpen = "open"
	StatusWon  = "won"
	StatusLost = "lost"
)

// Stages in pipeline order. A deal may only move forward through these,
// except for explicit win/lose transitions which jump to closed.
var Stages = []string{StageProspecting, StageQualification, StageProposal, StageNegotiation, StageClosed}

func StageIndex(stage string) int {
	for i, s := range Stages {
		if s == stage {
			return i
		}
	}
	return -1
}

type Deal struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	Name      string        `gorm:"not null" json:"name"`
	LeadID    *snowflake.ID `gorm:"index" json:"lead_id,omitempty"`
	OwnerID   snowflake.ID  `gorm:"not null;index" json:"owner_id"`
	Amount    int64         `gorm:"not null;default:0" json:"amount"`
	Stage     string        `gorm:"not null;index;default:prospecting" json:"stage"`
	Status    string        `gorm:"not null;index;default:open" json:"status"`
	ClosedAt  *time.Time    `gorm:"index" json:"closed_at,omitempty"`
	CreatedAt time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time     `gorm:"not null" json:"updated_at"`
}

func (Deal) TableName() string { return "deals" }
