package logging

import (
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

type testAppender struct {
	tb testing.TB
}

// NewTestAppender writes entries with tb.Log, so output stays attached to the test that logged
// it. Timestamps are in local time.
func NewTestAppender(tb testing.TB) Appender {
	return &testAppender{tb}
}

func (tapp *testAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	tapp.tb.Helper()
	parts := []string{
		entry.Time.Format(DefaultTimeFormatStr),
		strings.ToUpper(entry.Level.String()),
		entry.LoggerName,
	}
	if entry.Caller.Defined {
		parts = append(parts, callerToString(&entry.Caller))
	}
	parts = append(parts, entry.Message)

	var err error
	if len(fields) != 0 {
		enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{SkipLineEnding: true})
		buf, encErr := enc.EncodeEntry(zapcore.Entry{}, fields)
		if encErr == nil {
			parts = append(parts, buf.String())
		}
		err = encErr
	}
	tapp.tb.Log(strings.Join(parts, "\t"))
	return err
}

func (tapp *testAppender) Sync() error {
	return nil
}
