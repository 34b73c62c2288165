package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	Stage   string
	Status  string
	OwnerID snowflake.ID
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, deal *Deal) error
	Update(ctx context.Context, db *gorm.DB, deal *Deal) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Deal, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Deal, error)
	// SumWonAmount totals won-deal revenue closed within [from, to).
	SumWonAmount(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, from, to time.Time) (int64, error)
	// ClosedSince returns won/lost deals for an owner closed on or after the cutoff.
	ClosedSince(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, cutoff time.Time) ([]*Deal, error)
	PipelineSummary(ctx context.Context, db *gorm.DB) ([]PipelineSummary, error)
}
