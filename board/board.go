// Package board defines the rig-side peripherals a bench controller needs: GPIO lines for the
// measurement mux, scenario and stimulus, and ADC channels for the proxy voltage.
package board

import "context"

// A Board exposes named analog inputs and GPIO pins.
type Board interface {
	// AnalogByName returns an analog input by name.
	AnalogByName(name string) (Analog, error)

	// GPIOPinByName returns a GPIO pin by name.
	GPIOPinByName(name string) (GPIOPin, error)

	// Close releases any lines or files held by the board.
	Close(ctx context.Context) error
}

// AnalogValue is a raw ADC reading along with the range it was read in.
type AnalogValue struct {
	Value    int
	Min      float32
	Max      float32
	StepSize float32
}

// Normalized maps the reading into [0, 1] using Min and Max. Degenerate ranges read as 0.
func (v AnalogValue) Normalized() float64 {
	span := float64(v.Max - v.Min)
	if span <= 0 {
		return 0
	}
	n := (float64(v.Value) - float64(v.Min)) / span
	switch {
	case n < 0:
		return 0
	case n > 1:
		return 1
	default:
		return n
	}
}

// An Analog reads an analog input.
type Analog interface {
	// Read reads the current value of the input.
	Read(ctx context.Context, extra map[string]interface{}) (AnalogValue, error)
}

// A GPIOPin represents an individual GPIO pin on a board.
type GPIOPin interface {
	// Set sets the pin to either low or high.
	Set(ctx context.Context, high bool, extra map[string]interface{}) error

	// Get gets the high/low state of the pin.
	Get(ctx context.Context, extra map[string]interface{}) (bool, error)
}
