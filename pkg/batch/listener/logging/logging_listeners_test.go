package logging

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"

	model "github.com/tigerroll/surfin-energy/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/logger"
)

func TestLoggingListeners(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(zapcore.AddSync(&buf))
	defer logger.SetOutput(zapcore.Lock(os.Stderr))

	ctx := context.Background()
	je := model.NewJobExecution("prepareForecastDataset", nil)
	se := model.NewStepExecution(je, "splitStep")
	se.WriteCount = 42

	jl := NewLoggingJobListener()
	sl := NewLoggingStepListener()
	jl.BeforeJob(ctx, je)
	sl.BeforeStep(ctx, se)
	sl.AfterStep(ctx, se)
	je.MarkAsFailed(errors.New("group ulsan_1 is empty"))
	jl.AfterJob(ctx, je)

	out := buf.String()
	assert.Contains(t, out, "BeforeJob - JobName: prepareForecastDataset")
	assert.Contains(t, out, "AfterStep - StepName: splitStep")
	assert.Contains(t, out, "Write: 42")
	assert.Contains(t, out, "Failures: group ulsan_1 is empty")
}
