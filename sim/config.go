package sim

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/ecubench/catalog"
)

// DefaultReportInterval is how often the simulated ECU publishes its reports.
const DefaultReportInterval = 50 * time.Millisecond

// Proxy voltages the rig reads back from the simulated board.
const (
	LowSideHighVoltage  = 2.8
	HighSideHighVoltage = 1.0
	LowVoltage          = 0.1
)

// Config describes a simulated ECU and the faults it should exhibit.
type Config struct {
	BoardID    uint16 `json:"board_id"`
	EngineType uint16 `json:"engine_type,omitempty"`

	Outputs   int `json:"outputs"`
	LowSide   int `json:"low_side"`
	DCOutputs int `json:"dc_outputs"`

	// Analog holds the raw 8-bit reading of channels 0-15.
	Analog []byte `json:"analog,omitempty"`
	// Events and Buttons are the baseline counter values; stimulus edges on input lines 0-6
	// count into events and lines 7-9 into buttons.
	Events  []byte `json:"events,omitempty"`
	Buttons []byte `json:"buttons,omitempty"`

	ReportInterval time.Duration `json:"report_interval,omitempty"`

	// StuckOutputs never change state, whatever they are commanded to.
	StuckOutputs []int `json:"stuck_outputs,omitempty"`
	// Silent boards never publish reports nor answer the inventory request.
	Silent bool `json:"silent,omitempty"`

	// ADC channel of the first bank of each kind of line, as wired on the rig. Banks must not
	// overlap.
	OutputChannelBase int `json:"output_channel_base"`
	InputChannelBase  int `json:"input_channel_base"`
	DCChannelBase     int `json:"dc_channel_base"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if conf.Outputs < 0 || conf.Outputs > 0xff {
		return utils.NewConfigValidationError(path, errors.Errorf("outputs %d out of range", conf.Outputs))
	}
	if conf.LowSide < 0 || conf.LowSide > conf.Outputs {
		return utils.NewConfigValidationError(path, errors.New("low_side cannot exceed outputs"))
	}
	if conf.DCOutputs < 0 || conf.DCOutputs > 0xff {
		return utils.NewConfigValidationError(path, errors.Errorf("dc_outputs %d out of range", conf.DCOutputs))
	}
	if len(conf.Analog) > 2*8 {
		return utils.NewConfigValidationError(path, errors.New("at most 16 analog channels"))
	}
	return nil
}

// FromProfile returns a healthy simulated board matching a catalog profile: every analog channel
// reads its nominal value and every expected counter is already counting.
func FromProfile(p *catalog.BoardProfile, revision int) Config {
	conf := Config{
		BoardID:   p.IdentityCodes[revision],
		Outputs:   16,
		LowSide:   8,
		DCOutputs: 2,
		Analog:    make([]byte, 16),
		Events:    make([]byte, 7),
		Buttons:   make([]byte, 3),
	}
	if p.DesiredEngineConfig != catalog.NoPreference {
		conf.EngineType = uint16(p.DesiredEngineConfig)
	}
	for idx := range conf.Analog {
		spec, ok := p.Channel(idx)
		if !ok || spec.Multiplier == 0 {
			continue
		}
		nominal := (spec.AcceptMin + spec.AcceptMax) / 2 / spec.Multiplier
		conf.Analog[idx] = byte(math.Max(0, math.Min(255, math.Round(nominal*255/catalog.SupplyVoltage))))
	}
	for idx := range conf.Events {
		if idx < len(p.EventExpected) && p.EventExpected[idx] {
			conf.Events[idx] = 1
		}
	}
	for idx := range conf.Buttons {
		if idx < len(p.ButtonExpected) && p.ButtonExpected[idx] {
			conf.Buttons[idx] = 1
		}
	}
	return conf
}
