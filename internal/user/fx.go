package user

import (
	"github.com/copperline/crm/internal/user/repository"
	"github.com/copperline/crm/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
