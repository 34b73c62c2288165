package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type CreateTaskRequest struct {
	OwnerID string    `json:"owner_id" binding:"required"`
	Title   string    `json:"title" binding:"required"`
	Type    string    `json:"type"`
	DueAt   time.Time `json:"due_at" binding:"required"`
}

type RecordOutcomeRequest struct {
	ID      string
	Outcome string `json:"outcome" binding:"required"`
}

type ListTaskRequest struct {
	OwnerID     string `form:"owner_id"`
	OverdueOnly bool   `form:"overdue_only"`
}

type Service interface {
	Create(context.Context, CreateTaskRequest) (Task, error)
	Complete(ctx context.Context, id string) (Task, error)
	RecordOutcome(context.Context, RecordOutcomeRequest) (Task, error)
	List(context.Context, ListTaskRequest) ([]Task, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, task *Task) error
	Update(ctx context.Context, db *gorm.DB, task *Task) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Task, error)
	List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, overdueAsOf *time.Time) ([]*Task, error)
	// Overdue returns incomplete tasks due before now for one owner.
	Overdue(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, now time.Time) ([]OverdueTask, error)
	// OutcomesByType buckets an owner's typed tasks created in [from, to)
	// by task type with recorded-outcome and success tallies.
	OutcomesByType(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, from, to time.Time) ([]OutcomeBucket, error)
}

var (
	ErrInvalidOwner   = errors.New("invalid_owner")
	ErrInvalidTitle   = errors.New("invalid_title")
	ErrInvalidType    = errors.New("invalid_type")
	ErrInvalidOutcome = errors.New("invalid_outcome")
	ErrInvalidID      = errors.New("invalid_id")
	ErrNotFound       = errors.New("not_found")
	ErrTaskCompleted  = errors.New("task_completed")
)
