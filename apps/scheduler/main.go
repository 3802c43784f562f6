package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/kwachapos/fiscalgate/internal/apilog"
	"github.com/kwachapos/fiscalgate/internal/authority"
	"github.com/kwachapos/fiscalgate/internal/clock"
	"github.com/kwachapos/fiscalgate/internal/config"
	"github.com/kwachapos/fiscalgate/internal/migration"
	"github.com/kwachapos/fiscalgate/internal/observability"
	"github.com/kwachapos/fiscalgate/internal/offline"
	"github.com/kwachapos/fiscalgate/internal/scheduler"
	"github.com/kwachapos/fiscalgate/internal/terminal"
	"github.com/kwachapos/fiscalgate/pkg/db"
	"go.uber.org/fx"
)

// Standalone resubmission sweep: drains the offline backlog without
// serving the sales API.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		apilog.Module,
		authority.Module,
		terminal.Module,
		offline.Module,

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
