package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateDealRequest struct {
	Name    string        `json:"name" binding:"required"`
	OwnerID string        `json:"owner_id" binding:"required"`
	Amount  int64         `json:"amount"`
	LeadID  *snowflake.ID `json:"lead_id"`
}

type ListDealRequest struct {
	Stage   string `form:"stage"`
	Status  string `form:"status"`
	OwnerID string `form:"owner_id"`
}

type SetStageRequest struct {
	ID    string
	Stage string `json:"stage" binding:"required"`
}

// PipelineSummary aggregates open deals per stage.
type PipelineSummary struct {
	Stage string `json:"stage"`
	Count int64  `json:"count"`
	Total int64  `json:"total"`
}

type Service interface {
	Create(context.Context, CreateDealRequest) (Deal, error)
	List(context.Context, ListDealRequest) ([]Deal, error)
	GetByID(ctx context.Context, id string) (Deal, error)
	SetStage(context.Context, SetStageRequest) (Deal, error)
	Win(ctx context.Context, id string) (Deal, error)
	Lose(ctx context.Context, id string) (Deal, error)
	Pipeline(ctx context.Context) ([]PipelineSummary, error)
}

var (
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidOwner  = errors.New("invalid_owner")
	ErrInvalidAmount = errors.New("invalid_amount")
	ErrInvalidStage  = errors.New("invalid_stage")
	ErrInvalidID     = errors.New("invalid_id")
	ErrNotFound      = errors.New("not_found")
	ErrDealClosed    = errors.New("deal_closed")
	ErrStageBackward = errors.New("stage_backward")
)
