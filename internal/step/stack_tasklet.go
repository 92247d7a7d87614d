package step

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/tigerroll/surfin-energy/internal/align"
	"github.com/tigerroll/surfin-energy/internal/config"
	"github.com/tigerroll/surfin-energy/internal/domain/model"
	"github.com/tigerroll/surfin-energy/internal/source"
	"github.com/tigerroll/surfin-energy/internal/stack"
	"github.com/tigerroll/surfin-energy/pkg/batch/adapter/storage"
	"github.com/tigerroll/surfin-energy/pkg/batch/core/application/port"
	batchModel "github.com/tigerroll/surfin-energy/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-energy/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/exception"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/logger"
)

// StackTasklet loads every region, aligns it and stacks all plants.
type StackTasklet struct {
	cfg       *config.PrepConfig
	resolver  storage.StorageConnectionResolver
	workspace *Workspace
	recorder  metrics.MetricRecorder
}

// NewStackTasklet creates a StackTasklet.
func NewStackTasklet(cfg *config.PrepConfig, resolver storage.StorageConnectionResolver, ws *Workspace, recorder metrics.MetricRecorder) *StackTasklet {
	return &StackTasklet{cfg: cfg, resolver: resolver, workspace: ws, recorder: recorder}
}

// Execute fills the workspace with the stacked table.
func (t *StackTasklet) Execute(ctx context.Context, se *batchModel.StepExecution) (batchModel.ExitStatus, error) {
	conn, err := t.resolver.ResolveStorageConnection(ctx, t.cfg.Input.StorageRef)
	if err != nil {
		return batchModel.ExitStatusFailed, exception.NewBatchErrorf("source", "failed to resolve storage connection '%s'", t.cfg.Input.StorageRef, err)
	}
	loader := source.NewLoader(conn, t.cfg, t.recorder)

	energy, err := loader.LoadEnergy(ctx)
	if err != nil {
		return batchModel.ExitStatusFailed, exception.NewBatchError("source", "failed to load energy readings", err, false, false)
	}
	logger.Infof("Energy readings: %d rows, plants %v", energy.Len(), energy.Columns)

	var read atomic.Int64
	alignRegion := func(ctx context.Context, region string) ([]model.AlignedRow, error) {
		rs, err := loader.LoadRegion(ctx, region)
		if err != nil {
			return nil, err
		}
		read.Add(int64(len(rs.Observations) + len(rs.Forecasts)))
		start := time.Now()
		rows := align.Align(rs.Observations, rs.Forecasts)
		t.recorder.RecordDuration(ctx, "align", time.Since(start), map[string]string{"region": region})
		return rows, nil
	}

	stacker := stack.NewStacker(energy, alignRegion, stack.OptionsFrom(t.cfg), t.recorder)
	rows, results, err := stacker.Stack(ctx, t.cfg.Regions)
	if err != nil {
		return batchModel.ExitStatusFailed, exception.NewBatchError("stack", "failed to stack regions", err, false, false)
	}
	logger.Infof("Combining done. %d rows from %d regions.", len(rows), len(results))

	t.workspace.SetStacked(rows)
	se.ReadCount = int(read.Load()) + energy.Len()
	se.WriteCount = len(rows)
	se.ExecutionContext.Put(KeyRegions, len(results))
	se.ExecutionContext.Put(KeyStackedRows, len(rows))
	t.recorder.RecordStageRows(ctx, "stacked", "all", len(rows))
	return batchModel.ExitStatusCompleted, nil
}

// Close does nothing.
func (t *StackTasklet) Close(ctx context.Context) error { return nil }

var _ port.Tasklet = (*StackTasklet)(nil)
