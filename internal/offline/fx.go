package offline

import (
	"github.com/kwachapos/fiscalgate/internal/offline/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("offline",
	fx.Provide(repository.NewRepository),
)
