package job

import "go.uber.org/fx"

// Module provides the preparation job as a port.Job.
var Module = fx.Options(
	fx.Provide(NewPrepareJob),
)
