// Package job assembles the dataset preparation job from its steps.
package job

import (
	"go.uber.org/fx"

	"github.com/tigerroll/surfin-energy/internal/config"
	"github.com/tigerroll/surfin-energy/internal/step"
	"github.com/tigerroll/surfin-energy/pkg/batch/adapter/storage"
	port "github.com/tigerroll/surfin-energy/pkg/batch/core/application/port"
	coreConfig "github.com/tigerroll/surfin-energy/pkg/batch/core/config"
	repository "github.com/tigerroll/surfin-energy/pkg/batch/core/domain/repository"
	jobRunner "github.com/tigerroll/surfin-energy/pkg/batch/core/job/runner"
	metrics "github.com/tigerroll/surfin-energy/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-energy/pkg/batch/engine/step/tasklet"
	"github.com/tigerroll/surfin-energy/pkg/batch/listener/logging"
)

// DefaultJobName is used when surfin.batch.job_name is empty.
const DefaultJobName = "prepareForecastDataset"

// Step names, in execution order.
const (
	CheckStepName  = "checkStep"
	StackStepName  = "stackStep"
	SplitStepName  = "splitStep"
	ExportStepName = "exportStep"
)

// Params defines the dependencies of NewPrepareJob.
type Params struct {
	fx.In
	Repository repository.JobRepository
	Config     *coreConfig.Config
	Prep       *config.PrepConfig
	Storage    storage.StorageConnectionResolver
	Recorder   metrics.MetricRecorder
	Tracer     metrics.Tracer
}

// NewPrepareJob wires the check, stack, split and export steps into a
// SimpleJob. The steps share one Workspace, so a job instance is good for a
// single run.
func NewPrepareJob(p Params) port.Job {
	ws := step.NewWorkspace()

	stepOpts := func(keys ...string) []tasklet.Option {
		return []tasklet.Option{
			tasklet.WithListeners(logging.NewLoggingStepListener()),
			tasklet.WithMetricRecorder(p.Recorder),
			tasklet.WithTracer(p.Tracer),
			tasklet.WithPromotedKeys(keys...),
		}
	}

	steps := []port.Step{
		tasklet.NewTaskletStep(CheckStepName,
			step.NewCheckTasklet(p.Prep, p.Storage, p.Recorder),
			p.Repository, stepOpts(step.KeyOutputExists)...),
		tasklet.NewTaskletStep(StackStepName,
			step.NewStackTasklet(p.Prep, p.Storage, ws, p.Recorder),
			p.Repository, stepOpts(step.KeyRegions, step.KeyStackedRows)...),
		tasklet.NewTaskletStep(SplitStepName,
			step.NewSplitTasklet(p.Prep, ws, p.Recorder),
			p.Repository, stepOpts(step.KeyPlants, step.KeySplitRows, step.KeyTestRows)...),
		tasklet.NewTaskletStep(ExportStepName,
			step.NewExportTasklet(p.Prep, p.Storage, ws, p.Recorder),
			p.Repository, stepOpts(step.KeyOutputPath, step.KeyWritten)...),
	}

	name := p.Config.Surfin.Batch.JobName
	if name == "" {
		name = DefaultJobName
	}
	return jobRunner.NewSimpleJob(name, p.Repository, steps,
		jobRunner.WithStopOnStepFailure(p.Config.Surfin.Batch.StopOnStepFailure),
		jobRunner.WithJobListeners(logging.NewLoggingJobListener()),
		jobRunner.WithJobMetrics(p.Recorder, p.Tracer),
	)
}
