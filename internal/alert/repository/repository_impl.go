package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/copperline/crm/internal/alert/domain"
	"github.com/copperline/crm/pkg/db"
	"gorm.io/gorm"
)

type repository struct{}

func Provide() domain.Repository {
	return &repository{}
}

func (r *repository) HasSent(ctx context.Context, tx *gorm.DB, userID snowflake.ID, kind, period string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&domain.AlertRecord{}).
		Where("user_id = ? AND kind = ? AND period = ?", userID, kind, period).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) RecordSent(ctx context.Context, tx *gorm.DB, record *domain.AlertRecord) error {
	if err := tx.WithContext(ctx).Create(record).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ErrAlreadySent
		}
		return err
	}
	return nil
}

func (r *repository) ActiveExclusion(ctx context.Context, tx *gorm.DB, userID snowflake.ID, now time.Time) (*domain.AlertExclusion, error) {
	var exclusion domain.AlertExclusion
	err := tx.WithContext(ctx).
		Where("user_id = ? AND starts_at <= ? AND ends_at > ?", userID, now, now).
		Order("starts_at DESC").
		First(&exclusion).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &exclusion, nil
}

func (r *repository) InsertExclusion(ctx context.Context, tx *gorm.DB, exclusion *domain.AlertExclusion) error {
	return tx.WithContext(ctx).Create(exclusion).Error
}

func (r *repository) ListExclusions(ctx context.Context, tx *gorm.DB, userID snowflake.ID) ([]*domain.AlertExclusion, error) {
	var exclusions []*domain.AlertExclusion
	query := tx.WithContext(ctx).Order("starts_at DESC")
	if userID != 0 {
		query = query.Where("user_id = ?", userID)
	}
	if err := query.Find(&exclusions).Error; err != nil {
		return nil, err
	}
	return exclusions, nil
}

func (r *repository) FindExclusion(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*domain.AlertExclusion, error) {
	var exclusion domain.AlertExclusion
	err := tx.WithContext(ctx).Where("id = ?", id).First(&exclusion).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &exclusion, nil
}

func (r *repository) DeleteExclusion(ctx context.Context, tx *gorm.DB, id snowflake.ID) error {
	return tx.WithContext(ctx).Where("id = ?", id).Delete(&domain.AlertExclusion{}).Error
}
