package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/copperline/crm/internal/deal/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, deal *domain.Deal) error {
	return db.WithContext(ctx).Create(deal).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, deal *domain.Deal) error {
	return db.WithContext(ctx).Save(deal).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Deal, error) {
	var deal domain.Deal
	err := db.WithContext(ctx).First(&deal, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Deal, error) {
	stmt := db.WithContext(ctx).Model(&domain.Deal{})
	if filter.Stage != "" {
		stmt = stmt.Where("stage = ?", filter.Stage)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.OwnerID != 0 {
		stmt = stmt.Where("owner_id = ?", filter.OwnerID)
	}

	var deals []*domain.Deal
	if err := stmt.Order("created_at desc, id desc").Find(&deals).Error; err != nil {
		return nil, err
	}
	return deals, nil
}

func (r *repo) SumWonAmount(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, from, to time.Time) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Deal{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("owner_id = ? AND status = ? AND closed_at >= ? AND closed_at < ?",
			ownerID, domain.StatusWon, from, to).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repo) ClosedSince(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, cutoff time.Time) ([]*domain.Deal, error) {
	var deals []*domain.Deal
	err := db.WithContext(ctx).
		Where("owner_id = ? AND status IN ? AND closed_at >= ?",
			ownerID, []string{domain.StatusWon, domain.StatusLost}, cutoff).
		Order("closed_at desc").
		Find(&deals).Error
	if err != nil {
		return nil, err
	}
	return deals, nil
}

func (r *repo) PipelineSummary(ctx context.Context, db *gorm.DB) ([]domain.PipelineSummary, error) {
	var rows []domain.PipelineSummary
	err := db.WithContext(ctx).
		Model(&domain.Deal{}).
		Select("stage, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Where("status = ?", domain.StatusOpen).
		Group("stage").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
