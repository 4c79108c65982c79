package session

import "go.uber.org/fx"

// Module wires the cookie-backed session manager.
var Module = fx.Module("auth.session",
	fx.Provide(NewManager),
)
