package apilog

import (
	"github.com/kwachapos/fiscalgate/internal/apilog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("apilog",
	fx.Provide(service.NewRecorder),
)
