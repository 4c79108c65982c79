package main

import (
	"github.com/bukusaha/bukusaha/internal/config"
	"github.com/bukusaha/bukusaha/internal/migration"
	"github.com/bukusaha/bukusaha/internal/scheduler"
	"github.com/bukusaha/bukusaha/internal/server"
	"github.com/bukusaha/bukusaha/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
