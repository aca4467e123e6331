package verify

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"go.viam.com/ecubench/logging"
	"go.viam.com/ecubench/rig"
)

const (
	// DefaultCycles is how many times each line is toggled.
	DefaultCycles = 4
	// DefaultSettle is how long a line is given to settle before it is sampled.
	DefaultSettle = 100 * time.Millisecond
	// DefaultHighThreshold is the proxy voltage above which a line reads high.
	DefaultHighThreshold = 0.7
	// measureScenario is the scenario selected for every sample.
	measureScenario = 1
)

// LineKind is the kind of line a toggle test exercises.
type LineKind int

// Line kinds, in the order a run tests them.
const (
	DigitalOutput LineKind = iota
	DigitalInput
	DCOutput
)

func (k LineKind) String() string {
	switch k {
	case DigitalOutput:
		return "output"
	case DigitalInput:
		return "input"
	case DCOutput:
		return "dc"
	default:
		return "unknown"
	}
}

// ToggleSpec describes one toggle test.
type ToggleSpec struct {
	Kind LineKind
	// Line is the line index; its mux address is Line % 16 and its ADC channel is
	// ChannelBase + Line / 16.
	Line   int
	Name   string
	Driver Driver
	// Inverted lines are driven low to read high, as low side outputs are.
	Inverted bool
	// ExpectMatch is false when the sampled level must be the opposite of the commanded one.
	ExpectMatch bool
	ChannelBase int
}

// CycleResult is the outcome of one toggle cycle.
type CycleResult struct {
	Commanded bool
	High      bool
	Voltage   float64
	Err       error
	Pass      bool
}

// ToggleResult is the outcome of a toggle test.
type ToggleResult struct {
	Kind   LineKind
	Line   int
	Name   string
	Cycles []CycleResult
	Pass   bool
}

// Bench is the part of the rig a toggle test uses to observe a line.
type Bench interface {
	rig.Sampler
	rig.Addresser
}

// Toggler runs toggle tests one line at a time.
type Toggler struct {
	bench  Bench
	clock  clock.Clock
	logger logging.Logger

	Cycles        int
	Settle        time.Duration
	HighThreshold float64
}

// NewToggler returns a toggler using the default cycle count, settle time and threshold.
func NewToggler(bench Bench, clk clock.Clock, logger logging.Logger) *Toggler {
	if clk == nil {
		clk = clock.New()
	}
	return &Toggler{
		bench:         bench,
		clock:         clk,
		logger:        logger,
		Cycles:        DefaultCycles,
		Settle:        DefaultSettle,
		HighThreshold: DefaultHighThreshold,
	}
}

// Run toggles the line Cycles times. Cycles alternate commanding high and low, starting high. A
// cycle passes when the sampled level agrees with the commanded one as ExpectMatch requires. All
// cycles always run; the test passes only if every cycle does.
func (t *Toggler) Run(ctx context.Context, spec ToggleSpec) ToggleResult {
	res := ToggleResult{Kind: spec.Kind, Line: spec.Line, Name: spec.Name, Pass: true}
	channel := spec.ChannelBase + spec.Line/rig.LinesPerChannel
	logger := t.logger.Sublogger(spec.Kind.String())

	addrErr := t.bench.SelectAddress(ctx, spec.Line%rig.LinesPerChannel)
	if addrErr != nil {
		logger.Errorw("cannot select line", "line", spec.Name, "error", addrErr)
	}

	var seenHigh, seenLow bool
	for i := 0; i < t.Cycles; i++ {
		cycle := CycleResult{Commanded: i%2 == 0, Err: addrErr}
		logger.CDebugf(ctx, "sending line=%s value=%t", spec.Name, cycle.Commanded)

		if cycle.Err == nil {
			cycle.Err = spec.Driver.Drive(ctx, cycle.Commanded != spec.Inverted)
		}
		if cycle.Err == nil {
			cycle.Err = t.bench.SelectScenario(ctx, measureScenario)
		}
		t.clock.Sleep(t.Settle)
		if cycle.Err == nil {
			cycle.Voltage, cycle.Err = t.bench.Sample(ctx, channel)
			logger.CDebugf(ctx, "sampled line=%s channel=%d %1.3fv", spec.Name, channel, cycle.Voltage)
		}

		if cycle.Err != nil {
			logger.Errorf("ERROR! Cycle %s@%d FAILED! (%v)", spec.Name, i, cycle.Err)
		} else {
			cycle.High = cycle.Voltage > t.HighThreshold
			if cycle.High && !seenHigh {
				logger.Infof("ADC says HIGH %s@%d %1.3fv", spec.Name, i, cycle.Voltage)
				seenHigh = true
			}
			if !cycle.High && !seenLow {
				logger.Infof("ADC says LOW %s@%d %1.3fv", spec.Name, i, cycle.Voltage)
				seenLow = true
			}
			cycle.Pass = (cycle.High == cycle.Commanded) == spec.ExpectMatch
			if !cycle.Pass {
				logger.Errorf("ERROR! Cycle %s@%d FAILED! (set %t, received %t %1.3fv)",
					spec.Name, i, cycle.Commanded, cycle.High, cycle.Voltage)
			}
		}
		res.Pass = res.Pass && cycle.Pass
		res.Cycles = append(res.Cycles, cycle)
	}
	return res
}
