package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(zapcore.AddSync(&buf))
	defer SetOutput(zapcore.Lock(os.Stderr))
	defer SetLogLevel("INFO")

	SetLogLevel("warn")
	assert.Equal(t, LevelWarn, GetLogLevel())

	Infof("region %s done", "ulsan")
	assert.Empty(t, buf.String())

	Warnf("row count mismatch for %s", "ulsan_1")
	assert.Contains(t, buf.String(), "row count mismatch for ulsan_1")
	assert.Contains(t, buf.String(), "WARN")
}

func TestSetLogLevel_Unknown(t *testing.T) {
	defer SetLogLevel("INFO")
	SetLogLevel("DEBUG")
	assert.Equal(t, LevelDebug, GetLogLevel())

	SetLogLevel("verbose")
	assert.Equal(t, LevelInfo, GetLogLevel())
}

func TestShortFuncName(t *testing.T) {
	assert.Equal(t, "main.run", shortFuncName("main.run.func1"))
	assert.Equal(t, "app.NewApplication", shortFuncName("app.NewApplication"))
}
