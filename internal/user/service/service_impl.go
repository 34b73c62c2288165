package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/copperline/crm/internal/clock"
	"github.com/copperline/crm/internal/user/domain"
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
		log:   p.Log.Named("user.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateUserRequest) (domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, domain.ErrInvalidEmail
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.User{}, domain.ErrInvalidName
	}
	if !domain.IsValidRole(req.Role) {
		return domain.User{}, domain.ErrInvalidRole
	}
	if req.MonthlyQuota < 0 {
		return domain.User{}, domain.ErrInvalidQuota
	}

	existing, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return domain.User{}, err
	}
	if existing != nil {
		return domain.User{}, domain.ErrUserExists
	}

	now := s.clock.Now()
	user := domain.User{
		ID:           s.genID.Generate(),
		Email:        email,
		Name:         name,
		Role:         req.Role,
		HiredAt:      req.HiredAt,
		MonthlyQuota: req.MonthlyQuota,
		ManagerEmail: strings.TrimSpace(req.ManagerEmail),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &user); err != nil {
		return domain.User{}, err
	}

	s.log.Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role),
	)
	return user, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateUserRequest) (domain.User, error) {
	user, err := s.mustFind(ctx, req.ID)
	if err != nil {
		return domain.User{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.User{}, domain.ErrInvalidName
		}
		user.Name = name
	}
	if req.Role != nil {
		if !domain.IsValidRole(*req.Role) {
			return domain.User{}, domain.ErrInvalidRole
		}
		user.Role = *req.Role
	}
	if req.HiredAt != nil {
		user.HiredAt = req.HiredAt
	}
	if req.MonthlyQuota != nil {
		if *req.MonthlyQuota < 0 {
			return domain.User{}, domain.ErrInvalidQuota
		}
		user.MonthlyQuota = *req.MonthlyQuota
	}
	if req.ManagerEmail != nil {
		user.ManagerEmail = strings.TrimSpace(*req.ManagerEmail)
	}
	if req.ReportExempt != nil {
		user.ReportExempt = *req.ReportExempt
	}

	user.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, user); err != nil {
		return domain.User{}, err
	}
	return *user, nil
}

func (s *Service) Deactivate(ctx context.Context, id string) error {
	user, err := s.mustFind(ctx, id)
	if err != nil {
		return err
	}
	user.Active = false
	user.UpdatedAt = s.clock.Now()
	return s.repo.Update(ctx, s.db, user)
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.User, error) {
	user, err := s.mustFind(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	return *user, nil
}

func (s *Service) List(ctx context.Context, req domain.ListUserRequest) ([]domain.User, error) {
	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		Role:   strings.TrimSpace(req.Role),
		Active: req.Active,
	})
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (s *Service) ListMonitored(ctx context.Context) ([]domain.User, error) {
	active := true
	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		Active:        &active,
		MonitoredOnly: true,
		ExcludeExempt: true,
	})
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (s *Service) mustFind(ctx context.Context, id string) (*domain.User, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	user, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func deref(items []*domain.User) []domain.User {
	out := make([]domain.User, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, *item)
	}
	return out
}
