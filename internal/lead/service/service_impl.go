package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/copperline/crm/internal/clock"
	dealdomain "github.com/copperline/crm/internal/deal/domain"
	"github.com/copperline/crm/internal/lead/domain"
	"github.com/copperline/crm/pkg/db/pagination"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	DealSvc dealdomain.Service
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	dealSvc dealdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("lead.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		dealSvc: p.DealSvc,
	}
}

func (s *Service) Capture(ctx context.Context, req domain.CaptureLeadRequest) (domain.Lead, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Lead{}, domain.ErrInvalidName
	}
	ownerID, err := snowflake.ParseString(strings.TrimSpace(req.OwnerID))
	if err != nil || ownerID == 0 {
		return domain.Lead{}, domain.ErrInvalidOwner
	}

	now := s.clock.Now()
	company := strings.TrimSpace(req.Company)
	lead := domain.Lead{
		ID:          s.genID.Generate(),
		Name:        name,
		Company:     company,
		CompanySlug: slug.Make(company),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:       strings.TrimSpace(req.Phone),
		Source:      strings.TrimSpace(req.Source),
		Status:      domain.StatusNew,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &lead); err != nil {
		return domain.Lead{}, err
	}
	return lead, nil
}

func (s *Service) List(ctx context.Context, req domain.ListLeadRequest) (domain.ListLeadResponse, error) {
	filter := domain.ListFilter{Status: strings.TrimSpace(req.Status)}
	if owner := strings.TrimSpace(req.OwnerID); owner != "" {
		ownerID, err := snowflake.ParseString(owner)
		if err != nil {
			return domain.ListLeadResponse{}, domain.ErrInvalidOwner
		}
		filter.OwnerID = ownerID
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListLeadResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(lead *domain.Lead) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        lead.ID.String(),
			CreatedAt: lead.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	leads := make([]domain.Lead, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		leads = append(leads, *item)
	}

	resp := domain.ListLeadResponse{Leads: leads}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Lead, error) {
	lead, err := s.mustFind(ctx, id)
	if err != nil {
		return domain.Lead{}, err
	}
	return *lead, nil
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateLeadStatusRequest) (domain.Lead, error) {
	if !domain.IsValidStatus(req.Status) {
		return domain.Lead{}, domain.ErrInvalidStatus
	}
	lead, err := s.mustFind(ctx, req.ID)
	if err != nil {
		return domain.Lead{}, err
	}

	lead.Status = req.Status
	lead.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, lead); err != nil {
		return domain.Lead{}, err
	}
	return *lead, nil
}

// Convert marks the lead converted and opens a deal for its owner. Both
// writes happen in one transaction so a failed deal insert never strands
// a converted lead.
func (s *Service) Convert(ctx context.Context, req domain.ConvertLeadRequest) (domain.Lead, dealdomain.Deal, error) {
	lead, err := s.mustFind(ctx, req.ID)
	if err != nil {
		return domain.Lead{}, dealdomain.Deal{}, err
	}
	if lead.Status == domain.StatusConverted || lead.Status == domain.StatusLost {
		return domain.Lead{}, dealdomain.Deal{}, domain.ErrNotConvertible
	}

	dealName := strings.TrimSpace(req.DealName)
	if dealName == "" {
		dealName = lead.Name
		if lead.Company != "" {
			dealName = lead.Company + " - " + lead.Name
		}
	}

	now := s.clock.Now()
	leadID := lead.ID
	deal := dealdomain.Deal{
		ID:        s.genID.Generate(),
		Name:      dealName,
		LeadID:    &leadID,
		OwnerID:   lead.OwnerID,
		Amount:    req.Amount,
		Stage:     dealdomain.StageProspecting,
		Status:    dealdomain.StatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&deal).Error; err != nil {
			return err
		}
		lead.Status = domain.StatusConverted
		lead.UpdatedAt = now
		return s.repo.Update(ctx, tx, lead)
	})
	if err != nil {
		return domain.Lead{}, dealdomain.Deal{}, err
	}

	s.log.Info("lead converted",
		zap.String("lead_id", lead.ID.String()),
		zap.String("deal_id", deal.ID.String()),
	)
	return *lead, deal, nil
}

func (s *Service) mustFind(ctx context.Context, id string) (*domain.Lead, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	lead, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, domain.ErrNotFound
	}
	return lead, nil
}
