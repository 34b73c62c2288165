package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/copperline/crm/internal/clock"
	"github.com/copperline/crm/internal/deal/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("deal.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateDealRequest) (domain.Deal, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Deal{}, domain.ErrInvalidName
	}
	ownerID, err := snowflake.ParseString(strings.TrimSpace(req.OwnerID))
	if err != nil || ownerID == 0 {
		return domain.Deal{}, domain.ErrInvalidOwner
	}
	if req.Amount < 0 {
		return domain.Deal{}, domain.ErrInvalidAmount
	}

	now := s.clock.Now()
	deal := domain.Deal{
		ID:        s.genID.Generate(),
		Name:      name,
		LeadID:    req.LeadID,
		OwnerID:   ownerID,
		Amount:    req.Amount,
		Stage:     domain.StageProspecting,
		Status:    domain.StatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &deal); err != nil {
		return domain.Deal{}, err
	}
	return deal, nil
}

func (s *Service) List(ctx context.Context, req domain.ListDealRequest) ([]domain.Deal, error) {
	filter := domain.ListFilter{
		Stage:  strings.TrimSpace(req.Stage),
		Status: strings.TrimSpace(req.Status),
	}
	if owner := strings.TrimSpace(req.OwnerID); owner != "" {
		ownerID, err := snowflake.ParseString(owner)
		if err != nil {
			return nil, domain.ErrInvalidOwner
		}
		filter.OwnerID = ownerID
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	deals := make([]domain.Deal, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		deals = append(deals, *item)
	}
	return deals, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Deal, error) {
	deal, err := s.mustFind(ctx, id)
	if err != nil {
		return domain.Deal{}, err
	}
	return *deal, nil
}

func (s *Service) SetStage(ctx context.Context, req domain.SetStageRequest) (domain.Deal, error) {
	deal, err := s.mustFind(ctx, req.ID)
	if err != nil {
		return domain.Deal{}, err
	}
	if deal.Status != domain.StatusOpen {
		return domain.Deal{}, domain.ErrDealClosed
	}

	next := domain.StageIndex(req.Stage)
	if next < 0 {
		return domain.Deal{}, domain.ErrInvalidStage
	}
	if next < domain.StageIndex(deal.Stage) {
		return domain.Deal{}, domain.ErrStageBackward
	}

	deal.Stage = req.Stage
	deal.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, deal); err != nil {
		return domain.Deal{}, err
	}
	return *deal, nil
}

func (s *Service) Win(ctx context.Context, id string) (domain.Deal, error) {
	return s.close(ctx, id, domain.StatusWon)
}

func (s *Service) Lose(ctx context.Context, id string) (domain.Deal, error) {
	return s.close(ctx, id, domain.StatusLost)
}

func (s *Service) close(ctx context.Context, id, status string) (domain.Deal, error) {
	deal, err := s.mustFind(ctx, id)
	if err != nil {
		return domain.Deal{}, err
	}
	if deal.Status != domain.StatusOpen {
		return domain.Deal{}, domain.ErrDealClosed
	}

	now := s.clock.Now()
	deal.Status = status
	deal.Stage = domain.StageClosed
	deal.ClosedAt = &now
	deal.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, deal); err != nil {
		return domain.Deal{}, err
	}

	s.log.Info("deal closed",
		zap.String("deal_id", deal.ID.String()),
		zap.String("status", status),
		zap.Int64("amount", deal.Amount),
	)
	return *deal, nil
}

func (s *Service) Pipeline(ctx context.Context) ([]domain.PipelineSummary, error) {
	return s.repo.PipelineSummary(ctx, s.db)
}

func (s *Service) mustFind(ctx context.Context, id string) (*domain.Deal, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	deal, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, domain.ErrNotFound
	}
	return deal, nil
}
