package board

import (
	"go.viam.com/utils"
)

// AnalogConfig describes an analog input on a board.
type AnalogConfig struct {
	Name string `json:"name"`
	Pin  string `json:"pin"` // channel number on the ADC itself
	// Bits is the converter resolution; the reading range is [0, 2^Bits - 1].
	Bits int `json:"bits,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (config *AnalogConfig) Validate(path string) error {
	if config.Name == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if config.Pin == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "pin")
	}
	if config.Bits < 0 || config.Bits > 24 {
		return utils.NewConfigValidationError(path, errBits)
	}
	return nil
}

// MaxValue returns the largest raw value the converter can report.
func (config *AnalogConfig) MaxValue() int {
	bits := config.Bits
	if bits == 0 {
		bits = DefaultAnalogBits
	}
	return 1<<bits - 1
}

// DefaultAnalogBits is used when an analog config leaves Bits unset.
const DefaultAnalogBits = 12
