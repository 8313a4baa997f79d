package observability

import (
	"github.com/payflowhq/payflow/internal/observability/metrics"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		metrics.NewHTTPMetrics,
		metrics.New,
	),
)
