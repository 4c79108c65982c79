package transaction

import (
	"github.com/bukusaha/bukusaha/internal/transaction/repository"
	"github.com/bukusaha/bukusaha/internal/transaction/service"
	"go.uber.org/fx"
)

var Module = fx.Module("transaction",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
