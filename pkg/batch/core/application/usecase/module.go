package usecase

import (
	"go.uber.org/fx"

	port "github.com/tigerroll/surfin-energy/pkg/batch/core/application/port"
	"github.com/tigerroll/surfin-energy/pkg/batch/core/job/runner"
)

// Module provides the job runner, launcher and explorer.
var Module = fx.Options(
	fx.Provide(fx.Annotate(runner.NewSimpleJobRunner, fx.As(new(port.JobRunner)))),
	fx.Provide(fx.Annotate(NewSimpleJobLauncher, fx.As(new(JobLauncher)))),
	fx.Provide(fx.Annotate(NewSimpleJobExplorer, fx.As(new(JobExplorer)))),
)
