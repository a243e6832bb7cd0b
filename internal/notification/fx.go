package notification

import (
	"context"

	notificationdomain "github.com/udyogmart/udyogmart/internal/notification/domain"
	"github.com/udyogmart/udyogmart/internal/notification/service"
	"go.uber.org/fx"
)

func provideDispatcher(d *service.Dispatcher) notificationdomain.Dispatcher { return d }

func registerHooks(lc fx.Lifecycle, d *service.Dispatcher) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			d.Start()
			return nil
		},
		OnStop: func(context.Context) error {
			d.Stop()
			return nil
		},
	})
}

var Module = fx.Module("notification",
	fx.Provide(service.NewLogSink),
	fx.Provide(service.NewDispatcher),
	fx.Provide(provideDispatcher),
	fx.Invoke(registerHooks),
)
