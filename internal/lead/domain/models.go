package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusNew       = "new"
	StatusWorking   = "working"
	StatusQualified = "qualified"
	StatusConverted = "converted"
	StatusLost      = "lost"
)

func IsValidStatus(status string) bool {
	switch status {
	case StatusNew, StatusWorking, StatusQualified, StatusConverted, StatusLost:
		return true
	}
	return false
}

type Lead struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"not null" json:"name"`
	Company     string       `json:"company,omitempty"`
	CompanySlug string       `gorm:"index" json:"company_slug,omitempty"`
	Email       string       `json:"email,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Source      string       `json:"source,omitempty"`
	Status      string       `gorm:"not null;index;default:new" json:"status"`
	OwnerID     snowflake.ID `gorm:"not null;index" json:"owner_id"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
}

func (Lead) TableName() string { return "leads" }
