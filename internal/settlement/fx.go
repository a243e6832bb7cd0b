package settlement

import (
	"github.com/udyogmart/udyogmart/internal/settlement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("settlement.service",
	fx.Provide(service.NewService),
)
