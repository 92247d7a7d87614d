package step

import (
	"context"
	"strings"

	"github.com/tigerroll/surfin-energy/internal/config"
	"github.com/tigerroll/surfin-energy/pkg/batch/adapter/storage"
	"github.com/tigerroll/surfin-energy/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-energy/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-energy/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/exception"
)

// ExportTasklet writes the final dataset and its optional copies.
// It refuses to publish anything unless both the stack and split stages
// stored their tables in this run.
type ExportTasklet struct {
	cfg       *config.PrepConfig
	resolver  storage.StorageConnectionResolver
	workspace *Workspace
	recorder  metrics.MetricRecorder
}

// NewExportTasklet creates an ExportTasklet.
func NewExportTasklet(cfg *config.PrepConfig, resolver storage.StorageConnectionResolver, ws *Workspace, recorder metrics.MetricRecorder) *ExportTasklet {
	return &ExportTasklet{cfg: cfg, resolver: resolver, workspace: ws, recorder: recorder}
}

func (t *ExportTasklet) Execute(ctx context.Context, se *model.StepExecution) (model.ExitStatus, error) {
	stacked, stackedOK := t.workspace.Stacked()
	rows, bounds, splitOK := t.workspace.Split()
	if !stackedOK || !splitOK {
		return model.ExitStatusFailed, exception.NewBatchError("output", "refusing to export an incomplete dataset", ErrStageIncomplete, false, false)
	}

	exporter, err := newExporter(ctx, t.cfg, t.resolver, t.recorder)
	if err != nil {
		return model.ExitStatusFailed, err
	}
	written, err := exporter.Export(ctx, stacked, rows, bounds)
	if err != nil {
		return model.ExitStatusFailed, exception.NewBatchError("output", "failed to export dataset", err, false, true)
	}

	se.ReadCount = len(rows)
	se.WriteCount = len(rows)
	se.ExecutionContext.Put(KeyOutputPath, t.cfg.Output.Path)
	se.ExecutionContext.Put(KeyWritten, strings.Join(written, ","))
	return model.ExitStatusCompleted, nil
}

func (t *ExportTasklet) Close(ctx context.Context) error { return nil }

var _ port.Tasklet = (*ExportTasklet)(nil)
