package product

import (
	"github.com/payflowhq/payflow/internal/product/repository"
	"github.com/payflowhq/payflow/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
