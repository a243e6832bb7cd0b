package supplier

import (
	"github.com/udyogmart/udyogmart/internal/supplier/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("supplier",
	fx.Provide(repository.Provide),
)
