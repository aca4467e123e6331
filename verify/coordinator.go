package verify

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.viam.com/utils"

	"go.viam.com/ecubench/canbus"
	"go.viam.com/ecubench/catalog"
	"go.viam.com/ecubench/logging"
	"go.viam.com/ecubench/protocol"
	"go.viam.com/ecubench/rig"
)

const (
	// DefaultPause is the time between runs.
	DefaultPause = 5 * time.Second
	// DefaultInventoryPolls bounds how many settle periods a run waits for the IO meta info.
	DefaultInventoryPolls = 20
)

// Config tunes a Coordinator. Zero values select the defaults.
type Config struct {
	Pause          time.Duration
	Settle         time.Duration
	InventoryPolls int
	// Runs stops Loop after that many runs; 0 runs forever.
	Runs int
	// InputLines is how many ECU digital inputs the rig stimulates.
	InputLines int
	// ADC channel serving the first bank of each kind of line.
	OutputChannelBase int
	InputChannelBase  int
	DCChannelBase     int
}

// Progress is reported after every toggle test.
type Progress struct {
	Run    int
	Step   int
	Total  int
	Result ToggleResult
}

// Verdict is the outcome of a run.
type Verdict struct {
	Run            int
	// ID tells runs apart across restarts of the bench.
	ID             uuid.UUID
	Started        time.Time
	Elapsed        time.Duration
	Board          *Resolution
	Inventory      protocol.Inventory
	HaveInventory  bool
	Results        []ToggleResult
	OutputsPass    bool
	InputsPass     bool
	DCPass         bool
	CANPass        bool
	CountersPass   bool
	AnalogFailures int
	Pass           bool
}

// Failed returns the toggle tests that failed.
func (v Verdict) Failed() []ToggleResult {
	var out []ToggleResult
	for _, r := range v.Results {
		if !r.Pass {
			out = append(out, r)
		}
	}
	return out
}

// Coordinator sequences runs: reset, test every line, verdict.
type Coordinator struct {
	rc      *RunContext
	sink    canbus.Sender
	rig     rig.Rig
	toggler *Toggler
	clock   clock.Clock
	logger  logging.Logger
	conf    Config

	pending atomic.Pointer[catalog.Catalog]
	runs    int

	// OnProgress, when set, is called after every toggle test.
	OnProgress func(Progress)
}

// NewCoordinator returns a coordinator commanding the ECU over sink and observing it through r.
func NewCoordinator(
	rc *RunContext,
	sink canbus.Sender,
	r rig.Rig,
	clk clock.Clock,
	conf Config,
	logger logging.Logger,
) *Coordinator {
	if clk == nil {
		clk = clock.New()
	}
	if conf.Pause == 0 {
		conf.Pause = DefaultPause
	}
	if conf.Settle == 0 {
		conf.Settle = DefaultSettle
	}
	if conf.InventoryPolls == 0 {
		conf.InventoryPolls = DefaultInventoryPolls
	}
	toggler := NewToggler(r, clk, logger)
	toggler.Settle = conf.Settle
	return &Coordinator{
		rc:      rc,
		sink:    sink,
		rig:     r,
		toggler: toggler,
		clock:   clk,
		logger:  logger,
		conf:    conf,
	}
}

// SetCatalog replaces the catalog from the next run on.
func (c *Coordinator) SetCatalog(cat *catalog.Catalog) {
	c.pending.Store(cat)
}

// Loop runs until ctx is done, or Config.Runs runs have completed. A run in progress always
// completes; ctx is only checked between runs.
func (c *Coordinator) Loop(ctx context.Context, onVerdict func(Verdict)) error {
	for {
		v := c.RunOnce(ctx)
		if onVerdict != nil {
			onVerdict(v)
		}
		if c.conf.Runs > 0 && c.runs >= c.conf.Runs {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !utils.SelectContextOrWaitChan(ctx, c.clock.After(c.conf.Pause)) {
			return ctx.Err()
		}
	}
}

// RunOnce performs one full run and returns its verdict.
func (c *Coordinator) RunOnce(ctx context.Context) Verdict {
	c.runs++
	c.rc.Reset(c.pending.Swap(nil))
	v := Verdict{Run: c.runs, ID: uuid.New(), Started: c.clock.Now()}
	c.logger.Infow(fmt.Sprintf("starting run #%d", c.runs), "id", v.ID)

	inv, ok := c.requestInventory(ctx)
	v.Inventory, v.HaveInventory = inv, ok
	if !ok {
		c.logger.Error("no IO meta info from the ECU, cannot test outputs")
	}

	specs := c.plan(inv)
	v.OutputsPass, v.InputsPass, v.DCPass = ok, true, true
	for i, spec := range specs {
		res := c.toggler.Run(ctx, spec)
		v.Results = append(v.Results, res)
		switch spec.Kind {
		case DigitalOutput:
			v.OutputsPass = v.OutputsPass && res.Pass
		case DigitalInput:
			v.InputsPass = v.InputsPass && res.Pass
		case DCOutput:
			v.DCPass = v.DCPass && res.Pass
		}
		if c.OnProgress != nil {
			c.OnProgress(Progress{Run: c.runs, Step: i + 1, Total: len(specs), Result: res})
		}
	}

	v.Board = c.rc.Resolved()
	var board *catalog.BoardProfile
	if v.Board != nil {
		board = v.Board.Board
	}
	v.CANPass = c.rc.IsHappyCanTest()
	v.CountersPass = c.rc.Counters().Evaluate(board, c.logger)
	v.AnalogFailures = c.rc.AnalogFailures()
	v.Pass = v.OutputsPass && v.InputsPass && v.DCPass && v.CANPass && v.CountersPass
	v.Elapsed = c.clock.Since(v.Started)

	if !c.rc.AnalogReceived() {
		c.logger.Error("no analog reports received this run")
	}
	if v.Pass {
		c.logger.Infof("run #%d: ALL GOOD", c.runs)
	} else {
		c.logger.Errorf("run #%d: SOMETHING BAD SEE ABOVE", c.runs)
	}
	return v
}

// requestInventory asks for the IO meta info and waits a bounded number of settle periods.
func (c *Coordinator) requestInventory(ctx context.Context) (protocol.Inventory, bool) {
	if err := c.sink.Send(ctx, protocol.OutputCountRequest()); err != nil {
		c.logger.Errorw("cannot request output count", "error", err)
	}
	for i := 0; ; i++ {
		if inv, ok := c.rc.Inventory(); ok {
			return inv, true
		}
		if i >= c.conf.InventoryPolls {
			return protocol.Inventory{}, false
		}
		c.clock.Sleep(c.conf.Settle)
	}
}

// plan lists the toggle tests of a run: digital outputs, then digital inputs, then both sides
// of every DC pair.
func (c *Coordinator) plan(inv protocol.Inventory) []ToggleSpec {
	var board *catalog.BoardProfile
	if res := c.rc.Resolved(); res != nil {
		board = res.Board
	}
	var specs []ToggleSpec
	for line := 0; line < inv.Outputs; line++ {
		specs = append(specs, ToggleSpec{
			Kind:        DigitalOutput,
			Line:        line,
			Name:        board.OutputName(line),
			Driver:      OutputLine{Sink: c.sink, Line: uint8(line)},
			Inverted:    line < inv.LowSide,
			ExpectMatch: true,
			ChannelBase: c.conf.OutputChannelBase,
		})
	}
	for line := 0; line < c.conf.InputLines; line++ {
		specs = append(specs, ToggleSpec{
			Kind:        DigitalInput,
			Line:        line,
			Name:        fmt.Sprintf("in%d", line+1),
			Driver:      StimulusLine{Stimulator: c.rig, Line: line},
			ExpectMatch: true,
			ChannelBase: c.conf.InputChannelBase,
		})
	}
	for d := 0; d < inv.DCOutputs; d++ {
		a, b := 2*d, 2*d+1
		idx := uint8(d)
		specs = append(specs,
			dcSpec(c, a, fmt.Sprintf("dc%d.A", d+1), DCPair{Sink: c.sink, Index: idx, Reverse: true}, false),
			dcSpec(c, a, fmt.Sprintf("dc%d.A", d+1), DCPair{Sink: c.sink, Index: idx}, true),
			dcSpec(c, b, fmt.Sprintf("dc%d.B", d+1), DCPair{Sink: c.sink, Index: idx}, false),
			dcSpec(c, b, fmt.Sprintf("dc%d.B", d+1), DCPair{Sink: c.sink, Index: idx, Reverse: true}, true),
		)
	}
	return specs
}

func dcSpec(c *Coordinator, line int, name string, driver DCPair, expectMatch bool) ToggleSpec {
	return ToggleSpec{
		Kind:        DCOutput,
		Line:        line,
		Name:        name,
		Driver:      driver,
		ExpectMatch: expectMatch,
		ChannelBase: c.conf.DCChannelBase,
	}
}
