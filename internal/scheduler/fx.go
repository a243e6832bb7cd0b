package scheduler

import (
	"context"

	"github.com/udyogmart/udyogmart/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("scheduler",
	fx.Provide(New),
	fx.Invoke(registerHooks),
)

func registerHooks(lc fx.Lifecycle, cfg config.Config, sched *Scheduler) {
	if !cfg.Scheduler.Enabled {
		return
	}

	runCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_ = ctx
			go sched.Run(runCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			_ = ctx
			cancel()
			return nil
		},
	})
}
