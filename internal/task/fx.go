package task

import (
	"github.com/copperline/crm/internal/task/repository"
	"github.com/copperline/crm/internal/task/service"
	"go.uber.org/fx"
)

var Module = fx.Module("task",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
