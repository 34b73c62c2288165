package alert

import (
	"github.com/copperline/crm/internal/alert/compose"
	"github.com/copperline/crm/internal/alert/metricsource"
	"github.com/copperline/crm/internal/alert/repository"
	"github.com/copperline/crm/internal/alert/service"
	"go.uber.org/fx"
)

var Module = fx.Module("alert",
	fx.Provide(repository.Provide),
	fx.Provide(metricsource.New),
	fx.Provide(compose.New),
	fx.Provide(service.New),
)
