package migration

import (
	authdomain "github.com/payflowhq/payflow/internal/auth/domain"
	"github.com/payflowhq/payflow/internal/config"
	orderdomain "github.com/payflowhq/payflow/internal/order/domain"
	productdomain "github.com/payflowhq/payflow/internal/product/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}

		// MySQL and SQLite fall back to schema sync from the models.
		return conn.AutoMigrate(
			&authdomain.User{},
			&authdomain.Session{},
			&orderdomain.Order{},
			&productdomain.Product{},
		)
	}),
)
