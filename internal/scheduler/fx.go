package scheduler

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("scheduler",
	fx.Provide(NewSessionJanitor),
	fx.Invoke(func(lc fx.Lifecycle, janitor *SessionJanitor) {
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				janitor.Start()
				return nil
			},
			OnStop: func(context.Context) error {
				janitor.Stop()
				return nil
			},
		})
	}),
)
