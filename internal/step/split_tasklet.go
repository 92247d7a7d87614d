package step

import (
	"context"

	"github.com/tigerroll/surfin-energy/internal/config"
	"github.com/tigerroll/surfin-energy/internal/split"
	"github.com/tigerroll/surfin-energy/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-energy/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-energy/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/exception"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/logger"
)

// SplitTasklet cuts the stacked table at the configured rates.
type SplitTasklet struct {
	cfg       *config.PrepConfig
	workspace *Workspace
	recorder  metrics.MetricRecorder
}

// NewSplitTasklet creates a SplitTasklet.
func NewSplitTasklet(cfg *config.PrepConfig, ws *Workspace, recorder metrics.MetricRecorder) *SplitTasklet {
	return &SplitTasklet{cfg: cfg, workspace: ws, recorder: recorder}
}

func (t *SplitTasklet) Execute(ctx context.Context, se *model.StepExecution) (model.ExitStatus, error) {
	epoch, err := t.cfg.EpochTime()
	if err != nil {
		return model.ExitStatusFailed, exception.NewBatchError("split", "invalid epoch", err, false, false)
	}
	stacked, ok := t.workspace.Stacked()
	if !ok {
		return model.ExitStatusFailed, exception.NewBatchError("split", "no stacked table to split", ErrStageIncomplete, false, false)
	}

	logger.Infof("Select with rate (train : validation : test) = (%s)", t.cfg.Rates)
	rows, bounds := split.Split(stacked, t.cfg.Rates, epoch)
	t.workspace.SetSplit(rows, bounds)

	var test int
	for _, b := range bounds {
		test += b.TestLen()
		t.recorder.RecordStageRows(ctx, "split", b.ID, b.Len)
	}
	logger.Infof("Selection done. %d plants, %d rows (%d with forecast weather).", len(bounds), len(rows), test)

	se.ReadCount = len(stacked)
	se.WriteCount = len(rows)
	se.ExecutionContext.Put(KeyPlants, len(bounds))
	se.ExecutionContext.Put(KeySplitRows, len(rows))
	se.ExecutionContext.Put(KeyTestRows, test)
	return model.ExitStatusCompleted, nil
}

func (t *SplitTasklet) Close(ctx context.Context) error { return nil }

var _ port.Tasklet = (*SplitTasklet)(nil)
