package domain

import (
	"context"
	"errors"
	"time"
)

type CreateUserRequest struct {
	Email        string     `json:"email" binding:"required"`
	Name         string     `json:"name" binding:"required"`
	Role         string     `json:"role" binding:"required"`
	HiredAt      *time.Time `json:"hired_at"`
	MonthlyQuota int64      `json:"monthly_quota"`
	ManagerEmail string     `json:"manager_email"`
}

type UpdateUserRequest struct {
	ID           string
	Name         *string    `json:"name"`
	Role         *string    `json:"role"`
	HiredAt      *time.Time `json:"hired_at"`
	MonthlyQuota *int64     `json:"monthly_quota"`
	ManagerEmail *string    `json:"manager_email"`
	ReportExempt *bool      `json:"report_exempt"`
}

type ListUserRequest struct {
	Role   string `form:"role"`
	Active *bool  `form:"active"`
}

type Service interface {
	Create(context.Context, CreateUserRequest) (User, error)
	Update(context.Context, UpdateUserRequest) (User, error)
	Deactivate(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (User, error)
	List(context.Context, ListUserRequest) ([]User, error)
	// ListMonitored returns active, non-exempt users in monitored roles.
	ListMonitored(ctx context.Context) ([]User, error)
}

var (
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidRole  = errors.New("invalid_role")
	ErrInvalidQuota = errors.New("invalid_quota")
	ErrInvalidID    = errors.New("invalid_id")
	ErrUserExists   = errors.New("user_exists")
	ErrNotFound     = errors.New("not_found")
)
