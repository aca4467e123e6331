package logging

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type impl struct {
	name  string
	level AtomicLevel
	inUTC bool

	appenders []Appender
}

// LogEntry embeds a zapcore Entry and slice of Fields.
type LogEntry struct {
	zapcore.Entry
	fields []zapcore.Field
}

func (imp *impl) AddAppender(appender Appender) {
	imp.appenders = append(imp.appenders, appender)
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Set(level)
}

func (imp *impl) GetLevel() Level {
	return imp.level.Get()
}

func (imp *impl) Level() zapcore.Level {
	return imp.GetLevel().AsZap()
}

// Sublogger starts at the parent's current level and shares its appenders.
func (imp *impl) Sublogger(subname string) Logger {
	name := subname
	if imp.name != "" {
		name = imp.name + "." + subname
	}
	return &impl{name: name, level: NewAtomicLevelAt(imp.level.Get()), inUTC: imp.inUTC, appenders: imp.appenders}
}

func (imp *impl) Sync() error {
	var err error
	for _, appender := range imp.appenders {
		err = multierr.Append(err, appender.Sync())
	}
	return err
}

func (imp *impl) enabled(level Level, force bool) bool {
	return force || level >= imp.level.Get()
}

// newEntry must be called from the log* helpers only: the caller lookup skips a fixed number of
// frames to land on the code that called the public method.
func (imp *impl) newEntry(level Level, msg string, fields []zapcore.Field) *LogEntry {
	entry := &LogEntry{fields: fields}
	entry.Time = time.Now()
	if imp.inUTC {
		entry.Time = entry.Time.UTC()
	}
	entry.LoggerName = imp.name
	entry.Caller = getCaller()
	entry.Level = level.AsZap()
	entry.Message = msg
	return entry
}

func (imp *impl) write(entry *LogEntry) {
	for _, appender := range imp.appenders {
		if err := appender.Write(entry.Entry, entry.fields); err != nil {
			fmt.Fprint(os.Stderr, err)
		}
	}
}

func (imp *impl) log(level Level, force bool, args ...interface{}) {
	if imp.enabled(level, force) {
		imp.write(imp.newEntry(level, fmt.Sprint(args...), nil))
	}
}

func (imp *impl) logf(level Level, force bool, template string, args ...interface{}) {
	if imp.enabled(level, force) {
		imp.write(imp.newEntry(level, fmt.Sprintf(template, args...), nil))
	}
}

func (imp *impl) logw(level Level, msg string, keysAndValues ...interface{}) {
	if imp.enabled(level, false) {
		imp.write(imp.newEntry(level, msg, toFields(keysAndValues)))
	}
}

// toFields pairs up alternating keys and values. Values are json serialized, so only public
// struct fields show.
func toFields(keysAndValues []interface{}) []zapcore.Field {
	fields := make([]zapcore.Field, 0, len(keysAndValues)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 == len(keysAndValues) {
			fields = append(fields, zap.Any(key, errors.New("unpaired log key")))
			break
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}

func (imp *impl) Debug(args ...interface{}) { imp.log(DEBUG, false, args...) }

func (imp *impl) Debugf(template string, args ...interface{}) {
	imp.logf(DEBUG, false, template, args...)
}

// CDebugf also logs when ctx was passed through EnableDebugMode, whatever the logger level.
func (imp *impl) CDebugf(ctx context.Context, template string, args ...interface{}) {
	imp.logf(DEBUG, IsDebugMode(ctx), template, args...)
}

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	imp.logw(DEBUG, msg, keysAndValues...)
}

func (imp *impl) Info(args ...interface{}) { imp.log(INFO, false, args...) }

func (imp *impl) Infof(template string, args ...interface{}) {
	imp.logf(INFO, false, template, args...)
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	imp.logw(INFO, msg, keysAndValues...)
}

func (imp *impl) Warn(args ...interface{}) { imp.log(WARN, false, args...) }

func (imp *impl) Warnf(template string, args ...interface{}) {
	imp.logf(WARN, false, template, args...)
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	imp.logw(WARN, msg, keysAndValues...)
}

func (imp *impl) Error(args ...interface{}) { imp.log(ERROR, false, args...) }

func (imp *impl) Errorf(template string, args ...interface{}) {
	imp.logf(ERROR, false, template, args...)
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	imp.logw(ERROR, msg, keysAndValues...)
}

// Fatal logs as an error whatever the level, then exits the process.
func (imp *impl) Fatal(args ...interface{}) {
	imp.log(ERROR, true, args...)
	os.Exit(1)
}

// Fatalf logs as an error whatever the level, then exits the process.
func (imp *impl) Fatalf(template string, args ...interface{}) {
	imp.logf(ERROR, true, template, args...)
	os.Exit(1)
}

// getCaller returns e.g. "logging/impl_test.go:36": the frame that called a public log method.
func getCaller() zapcore.EntryCaller {
	// getCaller, newEntry, log helper, public method.
	const skipToLogCaller = 4
	var caller zapcore.EntryCaller
	var ok bool
	caller.PC, caller.File, caller.Line, ok = runtime.Caller(skipToLogCaller)
	if !ok {
		return caller
	}
	caller.Defined = true
	if fn := runtime.FuncForPC(caller.PC); fn != nil {
		caller.Function = fn.Name()
	}
	return caller
}
