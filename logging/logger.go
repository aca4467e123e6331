package logging

import (
	"context"

	"go.uber.org/zap/zapcore"
)

// Logger is the logging interface handed to every bench component. A bench run logs through
// the same Logger from both the receive and the run goroutines, so implementations must be safe
// for concurrent use.
type Logger interface {
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})
	CDebugf(ctx context.Context, template string, args ...interface{})

	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})

	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})

	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})

	Fatal(args ...interface{})
	Fatalf(template string, args ...interface{})

	// Sublogger returns a logger whose name is this logger's name with `subname` appended.
	Sublogger(subname string) Logger
	AddAppender(appender Appender)
	SetLevel(level Level)
	GetLevel() Level
	// Level satisfies zapcore.LevelEnabler style callers.
	Level() zapcore.Level
	Sync() error
}
