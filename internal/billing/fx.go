package billing

import (
	"github.com/smallbiznis/profitable/internal/billing/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("billing",
	fx.Provide(repository.Provide),
)
