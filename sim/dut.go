// Package sim simulates an ECU on a bench: it speaks the bench CAN protocol and stands in for the
// rig hardware, so the verification engine can run end to end without either.
package sim

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.viam.com/utils"

	"go.viam.com/ecubench/canbus"
	"go.viam.com/ecubench/logging"
	"go.viam.com/ecubench/protocol"
	"go.viam.com/ecubench/rig"
)

const reportQueueDepth = 64

// DUT is a simulated ECU. It is both the bus the bench talks to and the rig that measures it.
type DUT struct {
	conf   Config
	clock  clock.Clock
	logger logging.Logger

	mu         sync.Mutex
	outputs    map[int]bool
	dcForward  map[int]bool
	stimulus   map[int]bool
	edges      map[int]int
	address    int
	scenario   int
	engineType uint16
	start      time.Time

	reports   chan protocol.Frame
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
	workers   sync.WaitGroup
}

var (
	_ canbus.Bus = (*DUT)(nil)
	_ rig.Rig    = (*DUT)(nil)
)

// New starts a simulated ECU publishing reports on clk.
func New(conf Config, clk clock.Clock, logger logging.Logger) (*DUT, error) {
	if err := conf.Validate("sim"); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.New()
	}
	if conf.ReportInterval == 0 {
		conf.ReportInterval = DefaultReportInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &DUT{
		conf:       conf,
		clock:      clk,
		logger:     logger,
		outputs:    map[int]bool{},
		dcForward:  map[int]bool{},
		stimulus:   map[int]bool{},
		edges:      map[int]int{},
		engineType: conf.EngineType,
		scenario:   1,
		start:      clk.Now(),
		reports:    make(chan protocol.Frame, reportQueueDepth),
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	if !conf.Silent {
		d.workers.Add(1)
		utils.ManagedGo(func() { d.reportLoop(ctx) }, d.workers.Done)
	}
	return d, nil
}

func (d *DUT) reportLoop(ctx context.Context) {
	ticker := d.clock.Ticker(d.conf.ReportInterval)
	defer ticker.Stop()
	for {
		for _, f := range d.snapshot() {
			d.publish(f)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// snapshot builds one round of periodic reports.
func (d *DUT) snapshot() []protocol.Frame {
	d.mu.Lock()
	defer d.mu.Unlock()

	seconds := uint32(d.clock.Since(d.start).Seconds())
	status := protocol.StatusReport{BoardID: d.conf.BoardID, SecondsSinceReset: seconds, EngineType: d.engineType}

	var analogA, analogB [protocol.AnalogBlockSize]byte
	for i, raw := range d.conf.Analog {
		if i < protocol.AnalogBlockSize {
			analogA[i] = raw
		} else {
			analogB[i-protocol.AnalogBlockSize] = raw
		}
	}
	events := counterBytes(d.conf.Events, 7, d.edges, 0)
	buttons := counterBytes(d.conf.Buttons, 3, d.edges, 7)

	a, _ := protocol.NewFrame(protocol.RawAnalog1, analogA[:]...)
	b, _ := protocol.NewFrame(protocol.RawAnalog2, analogB[:]...)
	ev, _ := protocol.NewFrame(protocol.EventCounters, events...)
	bt, _ := protocol.NewFrame(protocol.ButtonCounters, buttons...)
	return []protocol.Frame{status.Encode(), a, b, ev, bt}
}

func counterBytes(baseline []byte, n int, edges map[int]int, firstLine int) []byte {
	out := make([]byte, n)
	copy(out, baseline)
	for i := range out {
		total := int(out[i]) + edges[firstLine+i]
		out[i] = byte(lo.Clamp(total, 0, 0xff))
	}
	return out
}

func (d *DUT) publish(f protocol.Frame) {
	select {
	case d.reports <- f:
	default:
		// Nobody is listening fast enough; drop like a bus with no acknowledging node.
	}
}

// Receive returns the next frame the ECU published.
func (d *DUT) Receive(ctx context.Context) (protocol.Frame, error) {
	select {
	case f := <-d.reports:
		return f, nil
	case <-d.done:
		return protocol.Frame{}, canbus.ErrClosed
	case <-ctx.Done():
		return protocol.Frame{}, ctx.Err()
	}
}

// Send delivers an IO control command to the ECU.
func (d *DUT) Send(ctx context.Context, f protocol.Frame) error {
	select {
	case <-d.done:
		return canbus.ErrClosed
	default:
	}
	if err := f.Validate(); err != nil {
		return err
	}
	cmd, err := protocol.DecodeCommand(f)
	if err != nil {
		d.logger.Debugw("sim ignoring frame", "frame", f.String(), "error", err)
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	switch cmd.Op {
	case protocol.GetCount:
		if !d.conf.Silent {
			d.publish(protocol.Inventory{
				Outputs: d.conf.Outputs, LowSide: d.conf.LowSide, DCOutputs: d.conf.DCOutputs,
			}.Encode())
		}
	case protocol.OutputSet, protocol.OutputClear:
		line := int(cmd.Index)
		if line >= d.conf.Outputs {
			return errors.Errorf("sim has no output %d", line)
		}
		if !lo.Contains(d.conf.StuckOutputs, line) {
			d.outputs[line] = cmd.Op == protocol.OutputSet
		}
	case protocol.DCOutput:
		if int(cmd.Index) >= d.conf.DCOutputs {
			return errors.Errorf("sim has no dc output %d", cmd.Index)
		}
		d.dcForward[int(cmd.Index)] = cmd.Value != 0
	case protocol.SetEngineType:
		d.logger.Infow("sim engine type changed", "from", d.engineType, "to", cmd.Index)
		d.engineType = uint16(cmd.Index)
	case protocol.StartPinTest, protocol.EndPinTest, protocol.ExecuteBenchTest, protocol.QueryPinState:
		d.logger.Debugw("sim ignoring command", "op", cmd.Op)
	}
	return nil
}

// SelectAddress implements rig.Addresser.
func (d *DUT) SelectAddress(ctx context.Context, address int) error {
	if address < 0 || address >= rig.LinesPerChannel {
		return errors.Errorf("mux address %d out of range", address)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.address = address
	return nil
}

// SelectScenario implements rig.Addresser.
func (d *DUT) SelectScenario(ctx context.Context, scenario int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scenario = scenario
	return nil
}

// Stimulate implements rig.Stimulator. Rising edges count into the activity counters.
func (d *DUT) Stimulate(ctx context.Context, line int, high bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.address = line % rig.LinesPerChannel
	if high && !d.stimulus[line] {
		d.edges[line]++
	}
	d.stimulus[line] = high
	return nil
}

// Sample implements rig.Sampler using the current mux address. Scenario 0 disconnects the
// proxy load and reads low.
func (d *DUT) Sample(ctx context.Context, channel int) (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.scenario == 0 {
		return LowVoltage, nil
	}

	if line, ok := bankLine(channel, d.conf.OutputChannelBase, d.conf.Outputs, d.address); ok {
		lowSide := line < d.conf.LowSide
		// A low side driver pulls its pin down when on.
		if d.outputs[line] == lowSide {
			return LowVoltage, nil
		}
		if lowSide {
			return LowSideHighVoltage, nil
		}
		return HighSideHighVoltage, nil
	}
	if line, ok := bankLine(channel, d.conf.DCChannelBase, 2*d.conf.DCOutputs, d.address); ok {
		forward, driven := d.dcForward[line/2]
		if driven && forward == (line%2 == 0) {
			return HighSideHighVoltage, nil
		}
		return LowVoltage, nil
	}
	line := (channel-d.conf.InputChannelBase)*rig.LinesPerChannel + d.address
	if channel >= d.conf.InputChannelBase && d.stimulus[line] {
		return HighSideHighVoltage, nil
	}
	return LowVoltage, nil
}

// bankLine maps an ADC channel and mux address to a line of a bank of count lines starting at
// channel base.
func bankLine(channel, base, count, address int) (int, bool) {
	if channel < base {
		return 0, false
	}
	line := (channel-base)*rig.LinesPerChannel + address
	return line, line < count
}

// Close stops publishing and fails every pending Receive.
func (d *DUT) Close() error {
	d.closeOnce.Do(func() {
		d.cancel()
		close(d.done)
	})
	d.workers.Wait()
	return nil
}
