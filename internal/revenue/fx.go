package revenue

import (
	"github.com/smallbiznis/profitable/internal/config"
	"github.com/smallbiznis/profitable/internal/revenue/adapters"
	"github.com/smallbiznis/profitable/internal/revenue/adapters/braintree"
	"github.com/smallbiznis/profitable/internal/revenue/adapters/paddlebilling"
	"github.com/smallbiznis/profitable/internal/revenue/adapters/paddleclassic"
	"github.com/smallbiznis/profitable/internal/revenue/adapters/stripe"
	revenuedomain "github.com/smallbiznis/profitable/internal/revenue/domain"
	"github.com/smallbiznis/profitable/internal/revenue/service"
	"go.uber.org/fx"
)

var Module = fx.Module("revenue",
	fx.Provide(
		func() *adapters.Registry {
			return adapters.NewRegistry(
				stripe.New(),
				braintree.New(),
				paddlebilling.New(),
				paddleclassic.New(),
			)
		},
		func(holder *config.MetricsConfigHolder) revenuedomain.MilestoneSource {
			return holder
		},
		service.NewService,
	),
)
