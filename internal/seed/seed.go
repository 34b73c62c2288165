package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	userdomain "github.com/copperline/crm/internal/user/domain"
	"gorm.io/gorm"
)

const (
	defaultAdminEmail = "admin@copperline.local"
	defaultAdminName  = "Copperline Admin"
)

// EnsureDefaultAdmin creates the bootstrap admin user on first boot so
// a fresh install has someone who can manage the team.
func EnsureDefaultAdmin(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user userdomain.User
		err := tx.WithContext(ctx).
			Where("email = ?", defaultAdminEmail).
			First(&user).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		user = userdomain.User{
			ID:           node.Generate(),
			Email:        defaultAdminEmail,
			Name:         defaultAdminName,
			Role:         userdomain.RoleAdmin,
			Active:       true,
			ReportExempt: true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.WithContext(ctx).Create(&user).Error
	})
}
