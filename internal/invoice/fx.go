package invoice

import (
	"github.com/bukusaha/bukusaha/internal/invoice/repository"
	"github.com/bukusaha/bukusaha/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
