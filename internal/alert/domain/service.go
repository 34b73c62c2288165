package domain

import (
	"context"
	"errors"
	"time"
)

type CreateExclusionRequest struct {
	UserID   string    `json:"user_id" binding:"required"`
	StartsAt time.Time `json:"starts_at" binding:"required"`
	EndsAt   time.Time `json:"ends_at" binding:"required"`
	Reason   string    `json:"reason"`
}

type Service interface {
	// The cron entry points. Each processes every monitored user and
	// never fails on per-user errors; only cross-cutting failures (storage
	// connectivity) surface as a returned error.
	RunQuota(ctx context.Context) (RunReport, error)
	RunActivity(ctx context.Context) (RunReport, error)
	RunTasks(ctx context.Context) (RunReport, error)
	RunMarketing(ctx context.Context, cadence Cadence) (RunReport, error)

	CreateExclusion(context.Context, CreateExclusionRequest) (AlertExclusion, error)
	ListExclusions(ctx context.Context, userID string) ([]AlertExclusion, error)
	DeleteExclusion(ctx context.Context, id string) error
}

var (
	ErrAlreadySent      = errors.New("alert_already_sent")
	ErrInvalidCadence   = errors.New("invalid_cadence")
	ErrInvalidUser      = errors.New("invalid_user")
	ErrInvalidWindow    = errors.New("invalid_window")
	ErrInvalidID        = errors.New("invalid_id")
	ErrExclusionMissing = errors.New("exclusion_not_found")
)
