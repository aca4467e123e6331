package fake

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/ecubench/board"
)

func TestFakeBoard(t *testing.T) {
	ctx := context.Background()
	b := NewBoard(&Config{Analogs: []board.AnalogConfig{{Name: "proxy0", Pin: "0", Bits: 10}}})

	_, err := b.AnalogByName("nope")
	test.That(t, err, test.ShouldNotBeNil)

	a, err := b.AnalogByName("proxy0")
	test.That(t, err, test.ShouldBeNil)
	b.Analogs["proxy0"].Set(512)
	val, err := a.Read(ctx, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, val, test.ShouldResemble, board.AnalogValue{Value: 512, Max: 1023, StepSize: 1})

	b.Analogs["proxy0"].Source = func(ctx context.Context) (int, error) { return 0, errors.New("bus fault") }
	_, err = a.Read(ctx, nil)
	test.That(t, err, test.ShouldBeError, errors.New("bus fault"))

	pin, err := b.GPIOPinByName("17")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pin.Set(ctx, true, nil), test.ShouldBeNil)
	high, err := pin.Get(ctx, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, high, test.ShouldBeTrue)
	test.That(t, b.Pin("17").SetCount(), test.ShouldEqual, 1)

	test.That(t, b.Close(ctx), test.ShouldBeNil)
	test.That(t, b.CloseCount, test.ShouldEqual, 1)
}

func TestConfigValidate(t *testing.T) {
	conf := &Config{Analogs: []board.AnalogConfig{{Name: "a"}}}
	test.That(t, conf.Validate("rig"), test.ShouldNotBeNil)
	conf.Analogs[0].Pin = "3"
	test.That(t, conf.Validate("rig"), test.ShouldBeNil)
}
