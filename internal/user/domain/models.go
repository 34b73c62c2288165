package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	RoleAdmin       = "admin"
	RoleManager     = "manager"
	RoleAccountExec = "account_exec"
	RoleSDR         = "sdr"
	RoleMarketing   = "marketing"
)

// MonitoredRoles are the roles the alert engine evaluates. Admins and
// managers receive escalations but are never graded themselves.
var MonitoredRoles = []string{RoleAccountExec, RoleSDR, RoleMarketing}

func IsMonitoredRole(role string) bool {
	for _, r := range MonitoredRoles {
		if r == role {
			return true
		}
	}
	return false
}

func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleAccountExec, RoleSDR, RoleMarketing:
		return true
	}
	return false
}

type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Email        string       `gorm:"not null;uniqueIndex" json:"email"`
	Name         string       `gorm:"not null" json:"name"`
	Role         string       `gorm:"not null;index" json:"role"`
	HiredAt      *time.Time   `json:"hired_at,omitempty"`
	MonthlyQuota int64        `gorm:"not null;default:0" json:"monthly_quota"`
	ManagerEmail string       `json:"manager_email,omitempty"`
	Active       bool         `gorm:"not null;default:true" json:"active"`
	ReportExempt bool         `gorm:"not null;default:false" json:"report_exempt"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "users" }
