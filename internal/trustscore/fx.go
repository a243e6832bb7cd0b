package trustscore

import (
	"github.com/udyogmart/udyogmart/internal/trustscore/service"
	"go.uber.org/fx"
)

var Module = fx.Module("trustscore.service",
	fx.Provide(service.NewService),
)
