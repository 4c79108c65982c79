package transfer

import (
	"github.com/bukusaha/bukusaha/internal/transfer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("transfer",
	fx.Provide(service.New),
)
