package migration

import (
	activitydomain "github.com/copperline/crm/internal/activity/domain"
	alertdomain "github.com/copperline/crm/internal/alert/domain"
	"github.com/copperline/crm/internal/config"
	dealdomain "github.com/copperline/crm/internal/deal/domain"
	leaddomain "github.com/copperline/crm/internal/lead/domain"
	"github.com/copperline/crm/internal/seed"
	taskdomain "github.com/copperline/crm/internal/task/domain"
	userdomain "github.com/copperline/crm/internal/user/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite has no migrate driver wired; let gorm build the schema.
			if err := conn.AutoMigrate(
				&userdomain.User{},
				&leaddomain.Lead{},
				&dealdomain.Deal{},
				&activitydomain.Activity{},
				&taskdomain.Task{},
				&alertdomain.AlertRecord{},
				&alertdomain.AlertExclusion{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureDefaultAdmin(conn)
	}),
)
