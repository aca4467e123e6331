package sim

import (
	"context"
	"testing"
	"time"

	"go.viam.com/test"

	"go.viam.com/ecubench/canbus"
	"go.viam.com/ecubench/catalog"
	"go.viam.com/ecubench/logging"
	"go.viam.com/ecubench/protocol"
	"go.viam.com/ecubench/verify"
)

func TestFromProfileIsHealthy(t *testing.T) {
	for _, p := range catalog.Default().Profiles() {
		conf := FromProfile(p, 0)
		test.That(t, conf.BoardID, test.ShouldEqual, p.IdentityCodes[0])
		for idx, raw := range conf.Analog {
			spec, ok := p.Channel(idx)
			if !ok {
				continue
			}
			volts := verify.RawToVolts(raw) * spec.Multiplier
			test.That(t, spec.Accepts(volts), test.ShouldBeTrue)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	conf := Config{Outputs: 4, LowSide: 5}
	test.That(t, conf.Validate("sim"), test.ShouldNotBeNil)
	conf.LowSide = 2
	test.That(t, conf.Validate("sim"), test.ShouldBeNil)
	conf.Analog = make([]byte, 17)
	test.That(t, conf.Validate("sim"), test.ShouldNotBeNil)
}

func newQuietDUT(t *testing.T, conf Config) *DUT {
	t.Helper()
	conf.ReportInterval = time.Hour
	d, err := New(conf, nil, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	t.Cleanup(func() { test.That(t, d.Close(), test.ShouldBeNil) })
	return d
}

func receiveKind(t *testing.T, d *DUT, kind protocol.Kind) protocol.Frame {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		f, err := d.Receive(ctx)
		test.That(t, err, test.ShouldBeNil)
		if f.Kind() == kind {
			return f
		}
	}
}

func TestReports(t *testing.T) {
	d := newQuietDUT(t, Config{
		BoardID: 0x0301, EngineType: 3, Outputs: 4, LowSide: 1, DCOutputs: 1,
		Analog: []byte{10, 0, 0, 0, 0, 0, 0, 0, 99}, Events: []byte{0, 2},
	})

	status := protocol.DecodeStatus(receiveKind(t, d, protocol.KindIdentity).Data)
	test.That(t, status.BoardID, test.ShouldEqual, uint16(0x0301))
	test.That(t, status.EngineType, test.ShouldEqual, uint16(3))
	test.That(t, receiveKind(t, d, protocol.KindAnalogA).Data[0], test.ShouldEqual, byte(10))
	test.That(t, receiveKind(t, d, protocol.KindAnalogB).Data[0], test.ShouldEqual, byte(99))
	test.That(t, receiveKind(t, d, protocol.KindEvents).Data[1], test.ShouldEqual, byte(2))

	ctx := context.Background()
	test.That(t, d.Send(ctx, protocol.OutputCountRequest()), test.ShouldBeNil)
	inv, err := protocol.DecodeInventory(receiveKind(t, d, protocol.KindMetaInfo).Data)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, inv, test.ShouldResemble, protocol.Inventory{Outputs: 4, LowSide: 1, DCOutputs: 1})

	test.That(t, d.Send(ctx, protocol.EngineTypeRequest(40)), test.ShouldBeNil)
	test.That(t, protocol.DecodeStatus(d.snapshot()[0].Data).EngineType, test.ShouldEqual, uint16(40))
}

func TestOutputsAndProxy(t *testing.T) {
	ctx := context.Background()
	d := newQuietDUT(t, Config{Outputs: 3, LowSide: 1, DCOutputs: 1, StuckOutputs: []int{2}, DCChannelBase: 1})

	sample := func(address, channel int) float64 {
		test.That(t, d.SelectAddress(ctx, address), test.ShouldBeNil)
		v, err := d.Sample(ctx, channel)
		test.That(t, err, test.ShouldBeNil)
		return v
	}

	// Low side output 0 reads high while off.
	test.That(t, sample(0, 0), test.ShouldEqual, LowSideHighVoltage)
	test.That(t, d.Send(ctx, protocol.PinState(0, true)), test.ShouldBeNil)
	test.That(t, sample(0, 0), test.ShouldEqual, LowVoltage)

	test.That(t, sample(1, 0), test.ShouldEqual, LowVoltage)
	test.That(t, d.Send(ctx, protocol.PinState(1, true)), test.ShouldBeNil)
	test.That(t, sample(1, 0), test.ShouldEqual, HighSideHighVoltage)

	test.That(t, d.Send(ctx, protocol.PinState(2, true)), test.ShouldBeNil)
	test.That(t, sample(2, 0), test.ShouldEqual, LowVoltage)

	test.That(t, d.Send(ctx, protocol.PinState(9, true)), test.ShouldNotBeNil)

	test.That(t, sample(0, 1), test.ShouldEqual, LowVoltage)
	test.That(t, d.Send(ctx, protocol.DCState(0, true)), test.ShouldBeNil)
	test.That(t, sample(0, 1), test.ShouldEqual, HighSideHighVoltage)
	test.That(t, sample(1, 1), test.ShouldEqual, LowVoltage)
	test.That(t, d.Send(ctx, protocol.DCState(0, false)), test.ShouldBeNil)
	test.That(t, sample(0, 1), test.ShouldEqual, LowVoltage)
	test.That(t, sample(1, 1), test.ShouldEqual, HighSideHighVoltage)

	test.That(t, d.SelectScenario(ctx, 0), test.ShouldBeNil)
	test.That(t, sample(1, 1), test.ShouldEqual, LowVoltage)
}

func TestStimulusCountsEdges(t *testing.T) {
	ctx := context.Background()
	d := newQuietDUT(t, Config{InputChannelBase: 2, Buttons: []byte{0, 0, 0}})

	test.That(t, d.Stimulate(ctx, 1, true), test.ShouldBeNil)
	v, err := d.Sample(ctx, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldEqual, HighSideHighVoltage)
	test.That(t, d.Stimulate(ctx, 1, true), test.ShouldBeNil)
	test.That(t, d.Stimulate(ctx, 1, false), test.ShouldBeNil)
	test.That(t, d.Stimulate(ctx, 1, true), test.ShouldBeNil)
	test.That(t, d.Stimulate(ctx, 8, true), test.ShouldBeNil)

	frames := d.snapshot()
	test.That(t, frames[3].Data[1], test.ShouldEqual, byte(2))
	test.That(t, frames[4].Data[1], test.ShouldEqual, byte(1))
}

func TestClose(t *testing.T) {
	d, err := New(Config{}, nil, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, d.Close(), test.ShouldBeNil)
	test.That(t, d.Close(), test.ShouldBeNil)

	// Drain what was published before closing.
	for {
		_, err = d.Receive(context.Background())
		if err != nil {
			break
		}
	}
	test.That(t, err, test.ShouldBeError, canbus.ErrClosed)
	test.That(t, d.Send(context.Background(), protocol.OutputCountRequest()), test.ShouldBeError, canbus.ErrClosed)
}
