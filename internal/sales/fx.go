package sales

import (
	"github.com/kwachapos/fiscalgate/internal/authority"
	"github.com/kwachapos/fiscalgate/internal/sales/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sales",
	fx.Provide(
		func(c *authority.Client) service.AuthorityClient { return c },
		service.NewService,
	),
)
