package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/copperline/crm/internal/task/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, task *domain.Task) error {
	return db.WithContext(ctx).Create(task).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, task *domain.Task) error {
	return db.WithContext(ctx).Save(task).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Task, error) {
	var task domain.Task
	err := db.WithContext(ctx).First(&task, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, overdueAsOf *time.Time) ([]*domain.Task, error) {
	stmt := db.WithContext(ctx).Model(&domain.Task{})
	if ownerID != 0 {
		stmt = stmt.Where("owner_id = ?", ownerID)
	}
	if overdueAsOf != nil {
		stmt = stmt.Where("completed_at IS NULL AND due_at < ?", *overdueAsOf)
	}

	var tasks []*domain.Task
	if err := stmt.Order("due_at asc, id asc").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *repo) Overdue(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, now time.Time) ([]domain.OverdueTask, error) {
	var rows []domain.OverdueTask
	err := db.WithContext(ctx).
		Model(&domain.Task{}).
		Select("id, title, due_at").
		Where("owner_id = ? AND completed_at IS NULL AND due_at < ?", ownerID, now).
		Order("due_at asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) OutcomesByType(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, from, to time.Time) ([]domain.OutcomeBucket, error) {
	var rows []domain.OutcomeBucket
	err := db.WithContext(ctx).
		Model(&domain.Task{}).
		Select(`type,
			COUNT(*) AS total,
			SUM(CASE WHEN outcome <> '' THEN 1 ELSE 0 END) AS recorded,
			SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END) AS successes`, domain.OutcomeSuccess).
		Where("owner_id = ? AND type <> '' AND created_at >= ? AND created_at < ?", ownerID, from, to).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
