package domain

import (
	"context"
	"errors"

	dealdomain "github.com/copperline/crm/internal/deal/domain"
	"github.com/copperline/crm/pkg/db/pagination"
)

type CaptureLeadRequest struct {
	Name    string `json:"name" binding:"required"`
	Company string `json:"company"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Source  string `json:"source"`
	OwnerID string `json:"owner_id" binding:"required"`
}

type ListLeadRequest struct {
	Status    string `form:"status"`
	OwnerID   string `form:"owner_id"`
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size,default=50"`
}

type ListLeadResponse struct {
	pagination.PageInfo
	Leads []Lead `json:"leads"`
}

type UpdateLeadStatusRequest struct {
	ID     string
	Status string `json:"status" binding:"required"`
}

// ConvertLeadRequest turns a qualified lead into an open deal.
type ConvertLeadRequest struct {
	ID       string
	DealName string `json:"deal_name"`
	Amount   int64  `json:"amount"`
}

type Service interface {
	Capture(context.Context, CaptureLeadRequest) (Lead, error)
	List(context.Context, ListLeadRequest) (ListLeadResponse, error)
	GetByID(ctx context.Context, id string) (Lead, error)
	UpdateStatus(context.Context, UpdateLeadStatusRequest) (Lead, error)
	Convert(context.Context, ConvertLeadRequest) (Lead, dealdomain.Deal, error)
}

var (
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidOwner   = errors.New("invalid_owner")
	ErrInvalidStatus  = errors.New("invalid_status")
	ErrInvalidID      = errors.New("invalid_id")
	ErrNotFound       = errors.New("not_found")
	ErrNotConvertible = errors.New("lead_not_convertible")
)
