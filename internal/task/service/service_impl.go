package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/copperline/crm/internal/clock"
	"github.com/copperline/crm/internal/task/domain"
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
		log:   p.Log.Named("task.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTaskRequest) (domain.Task, error) {
	ownerID, err := snowflake.ParseString(strings.TrimSpace(req.OwnerID))
	if err != nil || ownerID == 0 {
		return domain.Task{}, domain.ErrInvalidOwner
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Task{}, domain.ErrInvalidTitle
	}
	if !domain.IsValidType(req.Type) {
		return domain.Task{}, domain.ErrInvalidType
	}

	now := s.clock.Now()
	task := domain.Task{
		ID:        s.genID.Generate(),
		OwnerID:   ownerID,
		Title:     title,
		Type:      req.Type,
		DueAt:     req.DueAt.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

func (s *Service) Complete(ctx context.Context, id string) (domain.Task, error) {
	task, err := s.mustFind(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	if task.CompletedAt != nil {
		return domain.Task{}, domain.ErrTaskCompleted
	}

	now := s.clock.Now()
	task.CompletedAt = &now
	task.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, task); err != nil {
		return domain.Task{}, err
	}
	return *task, nil
}

func (s *Service) RecordOutcome(ctx context.Context, req domain.RecordOutcomeRequest) (domain.Task, error) {
	if req.Outcome != domain.OutcomeSuccess && req.Outcome != domain.OutcomeFailure {
		return domain.Task{}, domain.ErrInvalidOutcome
	}
	task, err := s.mustFind(ctx, req.ID)
	if err != nil {
		return domain.Task{}, err
	}

	task.Outcome = req.Outcome
	task.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, task); err != nil {
		return domain.Task{}, err
	}
	return *task, nil
}

func (s *Service) List(ctx context.Context, req domain.ListTaskRequest) ([]domain.Task, error) {
	var ownerID snowflake.ID
	if owner := strings.TrimSpace(req.OwnerID); owner != "" {
		parsed, err := snowflake.ParseString(owner)
		if err != nil {
			return nil, domain.ErrInvalidOwner
		}
		ownerID = parsed
	}

	var overdueAsOf *time.Time
	if req.OverdueOnly {
		now := s.clock.Now()
		overdueAsOf = &now
	}

	items, err := s.repo.List(ctx, s.db, ownerID, overdueAsOf)
	if err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		tasks = append(tasks, *item)
	}
	return tasks, nil
}

func (s *Service) mustFind(ctx context.Context, id string) (*domain.Task, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	task, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrNotFound
	}
	return task, nil
}
