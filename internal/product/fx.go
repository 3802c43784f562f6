package product

import (
	"github.com/kwachapos/fiscalgate/internal/product/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("product",
	fx.Provide(repository.NewRepository),
)
