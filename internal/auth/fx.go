package auth

import (
	"github.com/bukusaha/bukusaha/internal/auth/repository"
	"github.com/bukusaha/bukusaha/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
