package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/copperline/crm/internal/activity/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, activity *domain.Activity) error {
	return db.WithContext(ctx).Create(activity).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Activity, error) {
	stmt := db.WithContext(ctx).Model(&domain.Activity{})
	if filter.OwnerID != 0 {
		stmt = stmt.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Kind != "" {
		stmt = stmt.Where("kind = ?", filter.Kind)
	}
	if filter.Since != nil {
		stmt = stmt.Where("occurred_at >= ?", *filter.Since)
	}

	var activities []*domain.Activity
	if err := stmt.Order("occurred_at desc, id desc").Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

func (r *repo) CountSince(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, since time.Time) (domain.Counts, error) {
	var rows []struct {
		Kind  string
		Count int
	}
	err := db.WithContext(ctx).
		Model(&domain.Activity{}).
		Select("kind, COUNT(*) AS count").
		Where("owner_id = ? AND occurred_at >= ?", ownerID, since).
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return domain.Counts{}, err
	}

	var counts domain.Counts
	for _, row := range rows {
		switch row.Kind {
		case domain.KindCall:
			counts.Calls = row.Count
		case domain.KindEmail:
			counts.Emails = row.Count
		case domain.KindMeeting:
			counts.Meetings = row.Count
		case domain.KindNote:
			counts.Notes = row.Count
		}
	}
	return counts, nil
}
