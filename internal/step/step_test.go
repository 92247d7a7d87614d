package step_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/surfin-energy/internal/config"
	"github.com/tigerroll/surfin-energy/internal/source"
	"github.com/tigerroll/surfin-energy/internal/step"
	"github.com/tigerroll/surfin-energy/internal/testutil"
	"github.com/tigerroll/surfin-energy/pkg/batch/adapter/storage"
	storageConfig "github.com/tigerroll/surfin-energy/pkg/batch/adapter/storage/config"
	"github.com/tigerroll/surfin-energy/pkg/batch/adapter/storage/local"
	model "github.com/tigerroll/surfin-energy/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-energy/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/exception"
)

type fixedResolver map[string]storage.StorageConnection

func (r fixedResolver) ResolveStorageConnection(_ context.Context, name string) (storage.StorageConnection, error) {
	conn, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("storage %q not configured", name)
	}
	return conn, nil
}

func (r fixedResolver) CloseAll() error { return nil }

type env struct {
	cfg      *config.PrepConfig
	resolver fixedResolver
	in, out  storage.StorageConnection
}

func newEnv(t *testing.T, regions ...string) *env {
	t.Helper()
	in, err := local.NewLocalAdapter(storageConfig.StorageConfig{BaseDir: t.TempDir()}, "input")
	require.NoError(t, err)
	out, err := local.NewLocalAdapter(storageConfig.StorageConfig{BaseDir: t.TempDir()}, "output")
	require.NoError(t, err)

	require.NoError(t, testutil.Seed(context.Background(), in, regions, 3))

	cfg := config.Default()
	cfg.Regions = regions
	return &env{cfg: cfg, resolver: fixedResolver{"input": in, "output": out}, in: in, out: out}
}

func stepExecution(name string) *model.StepExecution {
	return model.NewStepExecution(model.NewJobExecution("prepareForecastDataset", nil), name)
}

func TestCheckTasklet(t *testing.T) {
	e := newEnv(t)
	recorder := metrics.NewNoOpMetricRecorder()
	ctx := context.Background()

	se := stepExecution("checkStep")
	status, err := step.NewCheckTasklet(e.cfg, e.resolver, recorder).Execute(ctx, se)
	require.NoError(t, err)
	assert.Equal(t, model.ExitStatusCompleted, status)
	exists, _ := se.ExecutionContext.GetBool(step.KeyOutputExists)
	assert.False(t, exists)

	require.NoError(t, e.out.Upload(ctx, "", "final.csv", strings.NewReader("ID\n"), "text/csv"))
	status, err = step.NewCheckTasklet(e.cfg, e.resolver, recorder).Execute(ctx, stepExecution("checkStep"))
	require.NoError(t, err)
	assert.Equal(t, model.ExitStatusNoOp, status)

	e.cfg.Force = true
	status, err = step.NewCheckTasklet(e.cfg, e.resolver, recorder).Execute(ctx, stepExecution("checkStep"))
	require.NoError(t, err)
	assert.Equal(t, model.ExitStatusCompleted, status)
}

func TestPipelineTasklets(t *testing.T) {
	e := newEnv(t, "alpha", "beta")
	e.cfg.Output.MergedPath = "merged.csv"
	ws := step.NewWorkspace()
	recorder := metrics.NewNoOpMetricRecorder()
	ctx := context.Background()

	se := stepExecution("stackStep")
	_, err := step.NewStackTasklet(e.cfg, e.resolver, ws, recorder).Execute(ctx, se)
	require.NoError(t, err)
	stacked, ok := ws.Stacked()
	require.True(t, ok)
	assert.Len(t, stacked, 6)
	assert.Equal(t, 6, se.WriteCount)
	assert.Equal(t, 2*(3+3)+3, se.ReadCount)

	se = stepExecution("splitStep")
	_, err = step.NewSplitTasklet(e.cfg, ws, recorder).Execute(ctx, se)
	require.NoError(t, err)
	rows, bounds, ok := ws.Split()
	require.True(t, ok)
	require.Len(t, rows, 6)
	require.Len(t, bounds, 2)
	testRows, _ := se.ExecutionContext.GetInt(step.KeyTestRows)
	assert.Equal(t, 2, testRows)

	se = stepExecution("exportStep")
	_, err = step.NewExportTasklet(e.cfg, e.resolver, ws, recorder).Execute(ctx, se)
	require.NoError(t, err)

	r, err := e.out.Download(ctx, "", "final.csv")
	require.NoError(t, err)
	defer r.Close()
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "alpha,2018-03-01 01:00:00,3,9,1,1.0,1.0,180.0,50.0,3.0,11.0,ALPHA,0", lines[1])
	assert.Equal(t, "alpha,2018-03-01 03:00:00,3,9,1,103.0,2.0,90.0,60.0,4.0,13.0,ALPHA,0", lines[3])
	assert.Equal(t, "beta,2018-03-01 03:00:00,3,9,1,103.0,2.0,90.0,60.0,4.0,23.0,BETA,0", lines[6])

	ok, err = e.out.Exists(ctx, "", "merged.csv")
	require.NoError(t, err)
	assert.True(t, ok)
	written, _ := se.ExecutionContext.GetString(step.KeyWritten)
	assert.Equal(t, "merged.csv,final.csv", written)
}

func TestStackTasklet_MissingSource(t *testing.T) {
	e := newEnv(t, "alpha")
	e.cfg.Regions = []string{"alpha", "gamma"}

	_, err := step.NewStackTasklet(e.cfg, e.resolver, step.NewWorkspace(), metrics.NewNoOpMetricRecorder()).
		Execute(context.Background(), stepExecution("stackStep"))
	require.Error(t, err)
	assert.ErrorIs(t, err, source.ErrSourceNotFound)
	assert.True(t, exception.IsFatal(err))
	assert.ErrorContains(t, err, "gamma_obs_data.csv")
	assert.ErrorContains(t, err, "available regions: alpha")
}

func TestStackTasklet_FailureLeavesNoMergedTable(t *testing.T) {
	e := newEnv(t, "alpha")
	e.cfg.Regions = []string{"alpha", "gamma"}
	e.cfg.Output.MergedPath = "merged.csv"
	ws := step.NewWorkspace()

	_, err := step.NewStackTasklet(e.cfg, e.resolver, ws, metrics.NewNoOpMetricRecorder()).
		Execute(context.Background(), stepExecution("stackStep"))
	require.Error(t, err)

	_, ok := ws.Stacked()
	assert.False(t, ok)
	exists, err := e.out.Exists(context.Background(), "", "merged.csv")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSplitAndExport_RequireCompletedStages(t *testing.T) {
	e := newEnv(t, "alpha")
	e.cfg.Output.MergedPath = "merged.csv"
	recorder := metrics.NewNoOpMetricRecorder()
	ctx := context.Background()

	status, err := step.NewSplitTasklet(e.cfg, step.NewWorkspace(), recorder).Execute(ctx, stepExecution("splitStep"))
	require.Error(t, err)
	assert.ErrorIs(t, err, step.ErrStageIncomplete)
	assert.Equal(t, model.ExitStatusFailed, status)

	ws := step.NewWorkspace()
	ws.SetStacked(nil)
	status, err = step.NewExportTasklet(e.cfg, e.resolver, ws, recorder).Execute(ctx, stepExecution("exportStep"))
	require.Error(t, err)
	assert.ErrorIs(t, err, step.ErrStageIncomplete)
	assert.True(t, exception.IsFatal(err))
	assert.Equal(t, model.ExitStatusFailed, status)

	for _, name := range []string{"final.csv", "merged.csv"} {
		exists, err := e.out.Exists(ctx, "", name)
		require.NoError(t, err)
		assert.False(t, exists, name)
	}
}
