package gorm

import (
	"context"

	"go.uber.org/fx"

	"github.com/tigerroll/surfin-energy/pkg/batch/adapter/database"
)

// Module provides the connection resolver and closes its connections on stop.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewResolver,
		fx.As(new(database.DBConnectionResolver)),
	)),
	fx.Invoke(func(lc fx.Lifecycle, resolver database.DBConnectionResolver) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return resolver.CloseAll()
			},
		})
	}),
)
