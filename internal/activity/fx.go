package activity

import (
	"github.com/copperline/crm/internal/activity/repository"
	"github.com/copperline/crm/internal/activity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("activity",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
