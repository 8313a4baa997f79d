package order

import (
	"github.com/payflowhq/payflow/internal/order/repository"
	"github.com/payflowhq/payflow/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
