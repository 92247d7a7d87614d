package logger

import "go.uber.org/fx"

// Module installs the zap-backed fx event logger.
var Module = fx.Options(
	fx.WithLogger(NewFxLoggerAdapter),
	fx.Invoke(func(lc fx.Lifecycle) {
		lc.Append(fx.StopHook(func() {
			// stderr sync returns EINVAL on some platforms; nothing to act on.
			_ = Sync()
		}))
	}),
)
