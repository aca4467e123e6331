// Package rig drives the bench hardware that sits between the controller and the device under
// test: a 16-way measurement multiplexer, a scenario selector, stimulus outputs for ECU inputs
// and ADC channels reading the multiplexed proxy voltage.
package rig

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/ecubench/board"
	"go.viam.com/ecubench/logging"
)

// LinesPerChannel is how many lines one mux routes into a single ADC channel.
const LinesPerChannel = 16

// DefaultReferenceVoltage is the ADC full-scale voltage when none is configured.
const DefaultReferenceVoltage = 3.3

// A Sampler reads a proxy voltage, in volts.
type Sampler interface {
	Sample(ctx context.Context, channel int) (float64, error)
}

// An Addresser selects the mux address and the test scenario.
type Addresser interface {
	SelectAddress(ctx context.Context, address int) error
	SelectScenario(ctx context.Context, scenario int) error
}

// A Stimulator drives a bench-side stimulus into an ECU input line.
type Stimulator interface {
	Stimulate(ctx context.Context, line int, high bool) error
}

// A Rig is the full set of bench peripherals.
type Rig interface {
	Sampler
	Addresser
	Stimulator
}

// Config names the board pins and analogs making up the rig.
type Config struct {
	AddressPins  []string `json:"address_pins"`
	ScenarioPins []string `json:"scenario_pins,omitempty"`
	// StimulusPins holds one stimulus output per bank of LinesPerChannel input lines.
	StimulusPins []string `json:"stimulus_pins,omitempty"`
	// Analogs holds one ADC input per bank of LinesPerChannel lines, in channel order.
	Analogs          []string `json:"analogs"`
	ReferenceVoltage float64  `json:"reference_voltage,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if len(conf.AddressPins) == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "address_pins")
	}
	if 1<<len(conf.AddressPins) < LinesPerChannel {
		return utils.NewConfigValidationError(path,
			errors.Errorf("%d address pins cannot select %d lines", len(conf.AddressPins), LinesPerChannel))
	}
	if len(conf.Analogs) == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "analogs")
	}
	if conf.ReferenceVoltage < 0 {
		return utils.NewConfigValidationError(path, errors.New("reference_voltage cannot be negative"))
	}
	return nil
}

// BoardRig implements Rig on top of a board.
type BoardRig struct {
	address  []board.GPIOPin
	scenario []board.GPIOPin
	stimulus []board.GPIOPin
	analogs  []board.Analog
	vref     float64
	logger   logging.Logger
}

var _ Rig = (*BoardRig)(nil)

// NewBoardRig resolves every configured pin and analog on the board.
func NewBoardRig(b board.Board, conf Config, logger logging.Logger) (*BoardRig, error) {
	if err := conf.Validate("rig"); err != nil {
		return nil, err
	}
	r := &BoardRig{logger: logger, vref: conf.ReferenceVoltage}
	if r.vref == 0 {
		r.vref = DefaultReferenceVoltage
	}
	var err error
	if r.address, err = pins(b, conf.AddressPins); err != nil {
		return nil, err
	}
	if r.scenario, err = pins(b, conf.ScenarioPins); err != nil {
		return nil, err
	}
	if r.stimulus, err = pins(b, conf.StimulusPins); err != nil {
		return nil, err
	}
	for _, name := range conf.Analogs {
		a, err := b.AnalogByName(name)
		if err != nil {
			return nil, err
		}
		r.analogs = append(r.analogs, a)
	}
	logger.Debugw("rig ready", "address_bits", len(r.address), "scenario_bits", len(r.scenario),
		"stimulus_banks", len(r.stimulus), "adc_channels", len(r.analogs))
	return r, nil
}

func pins(b board.Board, names []string) ([]board.GPIOPin, error) {
	out := make([]board.GPIOPin, 0, len(names))
	for _, name := range names {
		p, err := b.GPIOPinByName(name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// writeBits writes value to the pins, least significant bit first.
func writeBits(ctx context.Context, pins []board.GPIOPin, value int) error {
	if value < 0 || value >= 1<<len(pins) {
		return errors.Errorf("value %d does not fit in %d bits", value, len(pins))
	}
	var err error
	for bit, p := range pins {
		err = multierr.Combine(err, p.Set(ctx, value&(1<<bit) != 0, nil))
	}
	return err
}

// SelectAddress routes mux address into every ADC channel.
func (r *BoardRig) SelectAddress(ctx context.Context, address int) error {
	return errors.Wrap(writeBits(ctx, r.address, address), "cannot select mux address")
}

// SelectScenario sets the scenario selector. A rig without scenario pins accepts only 0 and 1.
func (r *BoardRig) SelectScenario(ctx context.Context, scenario int) error {
	if len(r.scenario) == 0 {
		if scenario > 1 || scenario < 0 {
			return errors.Errorf("rig has no scenario selector for scenario %d", scenario)
		}
		return nil
	}
	return errors.Wrap(writeBits(ctx, r.scenario, scenario), "cannot select scenario")
}

// Stimulate routes the mux to the line and drives the bank's stimulus output.
func (r *BoardRig) Stimulate(ctx context.Context, line int, high bool) error {
	bank := line / LinesPerChannel
	if line < 0 || bank >= len(r.stimulus) {
		return errors.Errorf("no stimulus output for input line %d", line)
	}
	if err := r.SelectAddress(ctx, line%LinesPerChannel); err != nil {
		return err
	}
	return r.stimulus[bank].Set(ctx, high, nil)
}

// Sample reads the ADC channel and scales it to the reference voltage.
func (r *BoardRig) Sample(ctx context.Context, channel int) (float64, error) {
	if channel < 0 || channel >= len(r.analogs) {
		return 0, errors.Errorf("no ADC channel %d", channel)
	}
	v, err := r.analogs[channel].Read(ctx, nil)
	if err != nil {
		return 0, err
	}
	return v.Normalized() * r.vref, nil
}
