package report

import (
	"github.com/bukusaha/bukusaha/internal/report/service"
	"go.uber.org/fx"
)

var Module = fx.Module("report",
	fx.Provide(service.New),
)
