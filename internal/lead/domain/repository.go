package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/copperline/crm/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Status  string
	OwnerID snowflake.ID
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, lead *Lead) error
	Update(ctx context.Context, db *gorm.DB, lead *Lead) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Lead, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]*Lead, error)
}
