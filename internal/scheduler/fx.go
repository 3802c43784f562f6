package scheduler

import (
	"context"

	"github.com/kwachapos/fiscalgate/internal/authority"
	"go.uber.org/fx"
)

var Module = fx.Module("scheduler",
	fx.Provide(ProvideConfig),
	fx.Provide(func(c *authority.Client) AuthorityClient { return c }),
	fx.Provide(New),
	fx.Invoke(StartScheduler),
)

func StartScheduler(lc fx.Lifecycle, sched *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())

			go sched.RunForever(ctx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})

			return nil
		},
	})
}
