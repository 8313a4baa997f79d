package auth

import (
	"github.com/payflowhq/payflow/internal/auth/repository"
	"github.com/payflowhq/payflow/internal/auth/service"
	"github.com/payflowhq/payflow/internal/auth/session"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.ProvideUsers),
	fx.Provide(repository.ProvideSessions),
	fx.Provide(session.NewManager),
	fx.Provide(service.New),
)
