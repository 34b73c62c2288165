package lead

import (
	"github.com/copperline/crm/internal/lead/repository"
	"github.com/copperline/crm/internal/lead/service"
	"go.uber.org/fx"
)

var Module = fx.Module("lead",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
