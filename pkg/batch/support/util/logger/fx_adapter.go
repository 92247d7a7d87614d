package logger

import (
	"strings"

	"go.uber.org/fx/fxevent"
)

// FxLoggerAdapter routes fx container events through the framework logger.
// Lifecycle noise goes to DEBUG, failures go to ERROR.
type FxLoggerAdapter struct{}

// NewFxLoggerAdapter creates a new instance of FxLoggerAdapter.
func NewFxLoggerAdapter() fxevent.Logger {
	return &FxLoggerAdapter{}
}

// LogEvent logs events from Fx.
func (l *FxLoggerAdapter) LogEvent(event fxevent.Event) {
	switch e := event.(type) {
	case *fxevent.OnStartExecuting:
		Debugf("OnStart hook executing: %s", shortFuncName(e.FunctionName))
	case *fxevent.OnStartExecuted:
		hookResult("OnStart", e.FunctionName, e.Err)
	case *fxevent.OnStopExecuting:
		Debugf("OnStop hook executing: %s", shortFuncName(e.FunctionName))
	case *fxevent.OnStopExecuted:
		hookResult("OnStop", e.FunctionName, e.Err)
	case *fxevent.Supplied:
		if e.Err != nil {
			Errorf("Supply failed for %s: %v", e.TypeName, e.Err)
			return
		}
		Debugf("Supplied: %s", e.TypeName)
	case *fxevent.Provided:
		if e.Err != nil {
			Errorf("Provide failed (%s): %v", shortFuncName(e.ConstructorName), e.Err)
			return
		}
		for _, t := range e.OutputTypeNames {
			Debugf("Provided: %s", t)
		}
	case *fxevent.Decorated:
		if e.Err != nil {
			Errorf("Decorate failed (%s): %v", shortFuncName(e.DecoratorName), e.Err)
		}
	case *fxevent.Invoking:
		Debugf("Invoking: %s", shortFuncName(e.FunctionName))
	case *fxevent.Invoked:
		if e.Err != nil {
			Errorf("Invoke failed: %s, error: %v", e.FunctionName, e.Err)
		}
	case *fxevent.Stopping:
		Debugf("Stopping on signal: %s", e.Signal)
	case *fxevent.Stopped:
		if e.Err != nil {
			Errorf("Stop failed: %v", e.Err)
		}
	case *fxevent.RollingBack:
		Errorf("Start failed, rolling back: %v", e.StartErr)
	case *fxevent.RolledBack:
		if e.Err != nil {
			Errorf("Rollback failed: %v", e.Err)
		}
	case *fxevent.Started:
		if e.Err != nil {
			Errorf("Start failed: %v", e.Err)
			return
		}
		Debugf("Application container started.")
	case *fxevent.LoggerInitialized:
		if e.Err != nil {
			Errorf("Logger initialization failed: %v", e.Err)
			return
		}
		Debugf("Custom logger initialized: %s", e.ConstructorName)
	}
}

func hookResult(kind, funcName string, err error) {
	if err != nil {
		Errorf("%s hook failed: %s, error: %v", kind, shortFuncName(funcName), err)
		return
	}
	Debugf("%s hook executed: %s", kind, shortFuncName(funcName))
}

// shortFuncName strips the anonymous ".funcN" suffix fx attaches to closures.
func shortFuncName(funcName string) string {
	if idx := strings.LastIndex(funcName, ".func"); idx != -1 {
		return funcName[:idx]
	}
	return funcName
}
