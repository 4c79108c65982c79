package organization

import (
	"github.com/bukusaha/bukusaha/internal/organization/repository"
	"github.com/bukusaha/bukusaha/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
