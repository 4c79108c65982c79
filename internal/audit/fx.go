package audit

import (
	"github.com/bukusaha/bukusaha/internal/audit/repository"
	"github.com/bukusaha/bukusaha/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
