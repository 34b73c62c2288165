package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type LogActivityRequest struct {
	OwnerID    string        `json:"owner_id" binding:"required"`
	Kind       string        `json:"kind" binding:"required"`
	LeadID     *snowflake.ID `json:"lead_id"`
	DealID     *snowflake.ID `json:"deal_id"`
	Subject    string        `json:"subject"`
	OccurredAt *time.Time    `json:"occurred_at"`
}

type ListActivityRequest struct {
	OwnerID string `form:"owner_id"`
	Kind    string `form:"kind"`
	Since   string `form:"since"`
}

type Service interface {
	Log(context.Context, LogActivityRequest) (Activity, error)
	List(context.Context, ListActivityRequest) ([]Activity, error)
}

type ListFilter struct {
	OwnerID snowflake.ID
	Kind    string
	Since   *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, activity *Activity) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Activity, error)
	// CountSince tallies an owner's activities by kind from the cutoff on.
	CountSince(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, since time.Time) (Counts, error)
}

var (
	ErrInvalidOwner = errors.New("invalid_owner")
	ErrInvalidKind  = errors.New("invalid_kind")
	ErrInvalidSince = errors.New("invalid_since")
)
