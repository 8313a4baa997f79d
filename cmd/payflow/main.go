package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/payflowhq/payflow/internal/config"
	"github.com/payflowhq/payflow/internal/logger"
	"github.com/payflowhq/payflow/internal/migration"
	"github.com/payflowhq/payflow/internal/server"
	"github.com/payflowhq/payflow/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
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
