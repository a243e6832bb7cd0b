package escrow

import (
	"github.com/udyogmart/udyogmart/internal/escrow/repository"
	"github.com/udyogmart/udyogmart/internal/escrow/service"
	"go.uber.org/fx"
)

var Module = fx.Module("escrow.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
