// Package app builds the fx container for the preparation job and runs it once.
package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/fx"

	"github.com/tigerroll/surfin-energy/internal/config"
	"github.com/tigerroll/surfin-energy/internal/job"
	gormAdapter "github.com/tigerroll/surfin-energy/pkg/batch/adapter/database/gorm"
	"github.com/tigerroll/surfin-energy/pkg/batch/adapter/storage"
	port "github.com/tigerroll/surfin-energy/pkg/batch/core/application/port"
	"github.com/tigerroll/surfin-energy/pkg/batch/core/application/usecase"
	coreConfig "github.com/tigerroll/surfin-energy/pkg/batch/core/config"
	model "github.com/tigerroll/surfin-energy/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-energy/pkg/batch/infrastructure/metrics"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/logger"

	// Dialects and storage backends register themselves on import.
	_ "github.com/tigerroll/surfin-energy/pkg/batch/adapter/database/gorm/mysql"
	_ "github.com/tigerroll/surfin-energy/pkg/batch/adapter/database/gorm/postgres"
	_ "github.com/tigerroll/surfin-energy/pkg/batch/adapter/database/gorm/sqlite"
	_ "github.com/tigerroll/surfin-energy/pkg/batch/adapter/storage/gcs"
	_ "github.com/tigerroll/surfin-energy/pkg/batch/adapter/storage/local"
)

// ExitStartupFailure is returned by Run when the container cannot start.
const ExitStartupFailure = 2

// Options are the command line inputs of the application.
type Options struct {
	// EnvFilePath is loaded before the YAML is expanded. Empty means ".env".
	EnvFilePath string
	// ConfigFilePath replaces the embedded YAML when set.
	ConfigFilePath string
	Overrides      config.Overrides
}

// jobResult receives the exit code of the single job run.
type jobResult chan int

// GetApplicationOptions builds the fx options of the application.
func GetApplicationOptions(appCtx context.Context, embeddedConfig coreConfig.EmbeddedConfig, opts Options, result jobResult) []fx.Option {
	return []fx.Option{
		fx.Supply(
			embeddedConfig,
			opts.Overrides,
			result,
			fx.Annotate(opts.EnvFilePath, fx.ResultTags(`name:"envFilePath"`)),
			fx.Annotate(opts.ConfigFilePath, fx.ResultTags(`name:"configFilePath"`)),
			fx.Annotate(appCtx, fx.As(new(context.Context)), fx.ResultTags(`name:"appCtx"`)),
		),
		logger.Module,
		coreConfig.Module,
		metrics.Module,
		storage.Module,
		gormAdapter.Module,
		RepositoryModule,
		config.Module,
		usecase.Module,
		job.Module,
		fx.Invoke(fx.Annotate(startJobExecution, fx.ParamTags(
			"",              // lc fx.Lifecycle
			"",              // jobLauncher usecase.JobLauncher
			"",              // job port.Job
			"",              // prep *config.PrepConfig
			"",              // result jobResult
			`name:"appCtx"`, // appCtx context.Context
		))),
	}
}

// Run builds the container, launches the job once and returns the process
// exit code. Cancelling ctx stops the job between steps.
func Run(ctx context.Context, embeddedConfig coreConfig.EmbeddedConfig, opts Options) int {
	result := make(jobResult, 1)
	app := fx.New(GetApplicationOptions(ctx, embeddedConfig, opts, result)...)
	if err := app.Err(); err != nil {
		logger.Errorf("Failed to build application: %v", err)
		return ExitStartupFailure
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), app.StartTimeout())
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		logger.Errorf("Failed to start application: %v", err)
		return ExitStartupFailure
	}

	code := <-result

	stopCtx, cancelStop := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil {
		logger.Errorf("Failed to stop application cleanly: %v", err)
	}
	return code
}

// startJobExecution is invoked by Fx to begin the batch job execution.
func startJobExecution(
	lc fx.Lifecycle,
	jobLauncher usecase.JobLauncher,
	j port.Job,
	prep *config.PrepConfig,
	result jobResult,
	appCtx context.Context,
) {
	lc.Append(fx.Hook{
		OnStart: onStartJobExecution(jobLauncher, j, prep, result, appCtx),
		OnStop:  onStopApplication(),
	})
}

// onStartJobExecution runs the job in the background so that OnStart
// returns within the start timeout.
func onStartJobExecution(
	jobLauncher usecase.JobLauncher,
	j port.Job,
	prep *config.PrepConfig,
	result jobResult,
	appCtx context.Context,
) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		go func() {
			code := 1
			defer func() {
				if r := recover(); r != nil {
					logger.Errorf("Panic recovered in job execution: %v", r)
				}
				result <- code
			}()

			jobExecution, err := jobLauncher.Launch(appCtx, j, jobParameters(prep))
			if err != nil {
				logger.Errorf("Failed to launch job '%s': %v", j.JobName(), err)
				return
			}
			code = jobExecution.ExitStatus.ExitCode()
			logger.Infof("Job '%s' (Execution ID: %s) finished with status: %s, ExitStatus: %s",
				j.JobName(), jobExecution.ID, jobExecution.Status, jobExecution.ExitStatus)
		}()
		return nil
	}
}

// onStopApplication logs application shutdown.
func onStopApplication() func(ctx context.Context) error {
	return func(ctx context.Context) error {
		logger.Infof("Application is shutting down.")
		return nil
	}
}

// jobParameters records the effective run settings in the execution history.
func jobParameters(prep *config.PrepConfig) model.JobParameters {
	params := model.NewJobParameters()
	params.Put("regions", strings.Join(prep.Regions, ","))
	params.Put("rates", prep.Rates.String())
	params.Put("alignment", prep.EnergyAlignment)
	params.Put("force", fmt.Sprintf("%t", prep.Force))
	return params
}
