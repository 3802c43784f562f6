// Package migration creates the fiscal tables at startup so the gateway
// is usable out of the box for local and self-hosted deployments.
package migration

import (
	apilogdomain "github.com/kwachapos/fiscalgate/internal/apilog/domain"
	offlinedomain "github.com/kwachapos/fiscalgate/internal/offline/domain"
	productdomain "github.com/kwachapos/fiscalgate/internal/product/domain"
	taxdomain "github.com/kwachapos/fiscalgate/internal/tax/domain"
	terminaldomain "github.com/kwachapos/fiscalgate/internal/terminal/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(Run),
)

func Run(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&terminaldomain.Terminal{},
		&taxdomain.TaxRate{},
		&productdomain.Product{},
		&offlinedomain.OfflineTransaction{},
		&apilogdomain.APICallLog{},
	)
}
