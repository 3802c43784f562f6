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
	"github.com/kwachapos/fiscalgate/internal/product"
	"github.com/kwachapos/fiscalgate/internal/sales"
	"github.com/kwachapos/fiscalgate/internal/scheduler"
	"github.com/kwachapos/fiscalgate/internal/server"
	"github.com/kwachapos/fiscalgate/internal/tax"
	"github.com/kwachapos/fiscalgate/internal/terminal"
	"github.com/kwachapos/fiscalgate/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Fiscal domains
		apilog.Module,
		authority.Module,
		terminal.Module,
		tax.Module,
		product.Module,
		offline.Module,
		sales.Module,

		// Offline resubmission sweep runs in-process in monolith mode.
		scheduler.Module,

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
