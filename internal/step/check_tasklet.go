package step

import (
	"context"

	"github.com/tigerroll/surfin-energy/internal/config"
	"github.com/tigerroll/surfin-energy/internal/output"
	"github.com/tigerroll/surfin-energy/pkg/batch/adapter/storage"
	"github.com/tigerroll/surfin-energy/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-energy/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-energy/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/exception"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/logger"
)

// CheckTasklet ends the run early when the final dataset already exists.
type CheckTasklet struct {
	cfg      *config.PrepConfig
	resolver storage.StorageConnectionResolver
	recorder metrics.MetricRecorder
}

// NewCheckTasklet creates a CheckTasklet.
func NewCheckTasklet(cfg *config.PrepConfig, resolver storage.StorageConnectionResolver, recorder metrics.MetricRecorder) *CheckTasklet {
	return &CheckTasklet{cfg: cfg, resolver: resolver, recorder: recorder}
}

// Execute returns ExitStatusNoOp if the output exists and force is off.
func (t *CheckTasklet) Execute(ctx context.Context, se *model.StepExecution) (model.ExitStatus, error) {
	exporter, err := newExporter(ctx, t.cfg, t.resolver, t.recorder)
	if err != nil {
		return model.ExitStatusFailed, err
	}
	exists, err := exporter.OutputExists(ctx)
	if err != nil {
		return model.ExitStatusFailed, exception.NewBatchError("check", "failed to look up existing output", err, false, true)
	}
	se.ExecutionContext.Put(KeyOutputExists, exists)

	if exists && !t.cfg.Force {
		logger.Infof("%s already exists; nothing to do. Run with -force to rebuild.", t.cfg.Output.Path)
		return model.ExitStatusNoOp, nil
	}
	if exists {
		logger.Infof("%s exists and will be rebuilt.", t.cfg.Output.Path)
	}
	return model.ExitStatusCompleted, nil
}

// Close does nothing.
func (t *CheckTasklet) Close(ctx context.Context) error { return nil }

func newExporter(ctx context.Context, cfg *config.PrepConfig, resolver storage.StorageConnectionResolver, recorder metrics.MetricRecorder) (*output.Exporter, error) {
	conn, err := resolver.ResolveStorageConnection(ctx, cfg.Output.StorageRef)
	if err != nil {
		return nil, exception.NewBatchErrorf("output", "failed to resolve storage connection '%s'", cfg.Output.StorageRef, err)
	}
	return output.NewExporter(conn, cfg.Output, recorder), nil
}

var _ port.Tasklet = (*CheckTasklet)(nil)
