package testutils

import (
	"go.uber.org/goleak"
)

// VerifyTestMain runs the package tests and fails if any goroutine outlives them.
func VerifyTestMain(m goleak.TestingM, opts ...goleak.Option) {
	opts = append(opts,
		goleak.IgnoreTopFunction("gopkg.in/natefinch/lumberjack%2ev2.(*Logger).millRun"),
	)
	goleak.VerifyTestMain(m, opts...)
}
