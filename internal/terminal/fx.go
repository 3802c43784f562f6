package terminal

import (
	"github.com/kwachapos/fiscalgate/internal/authority"
	"github.com/kwachapos/fiscalgate/internal/terminal/repository"
	"github.com/kwachapos/fiscalgate/internal/terminal/service"
	"go.uber.org/fx"
)

var Module = fx.Module("terminal",
	fx.Provide(repository.NewRepository),
	fx.Provide(func(c *authority.Client) service.AuthorityClient { return c }),
	fx.Provide(service.NewService),
)
