package customer

import (
	"github.com/bukusaha/bukusaha/internal/customer/repository"
	"github.com/bukusaha/bukusaha/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
