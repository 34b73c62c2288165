package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/copperline/crm/internal/activity"
	"github.com/copperline/crm/internal/alert"
	"github.com/copperline/crm/internal/clock"
	"github.com/copperline/crm/internal/config"
	"github.com/copperline/crm/internal/deal"
	"github.com/copperline/crm/internal/lead"
	"github.com/copperline/crm/internal/migration"
	"github.com/copperline/crm/internal/observability"
	"github.com/copperline/crm/internal/providers/email"
	"github.com/copperline/crm/internal/scheduler"
	"github.com/copperline/crm/internal/server"
	"github.com/copperline/crm/internal/task"
	"github.com/copperline/crm/internal/user"
	"github.com/copperline/crm/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		user.Module,
		lead.Module,
		deal.Module,
		activity.Module,
		task.Module,
		email.Module,
		alert.Module,

		scheduler.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
