package report

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

var Module = fx.Module("report",
	fx.Provide(
		func() *prometheus.Registry {
			return prometheus.NewRegistry()
		},
		func(registry *prometheus.Registry) prometheus.Registerer { return registry },
		NewGauges,
		NewBuilder,
	),
)

// Publisher refreshes the report in the background when enabled.
var Publisher = fx.Module("report.publisher",
	fx.Invoke(registerPublisher),
)
