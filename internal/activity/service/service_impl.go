package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/copperline/crm/internal/activity/domain"
	"github.com/copperline/crm/internal/clock"
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
		log:   p.Log.Named("activity.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Log(ctx context.Context, req domain.LogActivityRequest) (domain.Activity, error) {
	ownerID, err := snowflake.ParseString(strings.TrimSpace(req.OwnerID))
	if err != nil || ownerID == 0 {
		return domain.Activity{}, domain.ErrInvalidOwner
	}
	if !domain.IsValidKind(req.Kind) {
		return domain.Activity{}, domain.ErrInvalidKind
	}

	now := s.clock.Now()
	occurredAt := now
	if req.OccurredAt != nil {
		occurredAt = req.OccurredAt.UTC()
	}

	activity := domain.Activity{
		ID:         s.genID.Generate(),
		OwnerID:    ownerID,
		Kind:       req.Kind,
		LeadID:     req.LeadID,
		DealID:     req.DealID,
		Subject:    strings.TrimSpace(req.Subject),
		OccurredAt: occurredAt,
		CreatedAt:  now,
	}

	if err := s.repo.Insert(ctx, s.db, &activity); err != nil {
		return domain.Activity{}, err
	}
	return activity, nil
}

func (s *Service) List(ctx context.Context, req domain.ListActivityRequest) ([]domain.Activity, error) {
	filter := domain.ListFilter{Kind: strings.TrimSpace(req.Kind)}
	if owner := strings.TrimSpace(req.OwnerID); owner != "" {
		ownerID, err := snowflake.ParseString(owner)
		if err != nil {
			return nil, domain.ErrInvalidOwner
		}
		filter.OwnerID = ownerID
	}
	if since := strings.TrimSpace(req.Since); since != "" {
		parsed, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return nil, domain.ErrInvalidSince
		}
		filter.Since = &parsed
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	activities := make([]domain.Activity, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		activities = append(activities, *item)
	}
	return activities, nil
}
