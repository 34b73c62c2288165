package deal

import (
	"github.com/copperline/crm/internal/deal/repository"
	"github.com/copperline/crm/internal/deal/service"
	"go.uber.org/fx"
)

var Module = fx.Module("deal",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
