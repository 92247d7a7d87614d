package storage

import (
	"context"

	"go.uber.org/fx"
)

// Module provides the storage resolver and closes its connections on stop.
// Backends are enabled by importing their packages.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewResolver,
		fx.As(new(StorageConnectionResolver)),
	)),
	fx.Invoke(func(lc fx.Lifecycle, resolver StorageConnectionResolver) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return resolver.CloseAll()
			},
		})
	}),
)
