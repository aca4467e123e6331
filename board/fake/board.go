// Package fake implements a fake board.
package fake

import (
	"context"
	"fmt"
	"sync"

	"go.viam.com/ecubench/board"
)

// A Config describes the configuration of a fake board and all of its connected parts.
type Config struct {
	Analogs []board.AnalogConfig `json:"analogs,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	for idx, c := range conf.Analogs {
		if err := c.Validate(fmt.Sprintf("%s.%s.%d", path, "analogs", idx)); err != nil {
			return err
		}
	}
	return nil
}

// NewBoard returns a new fake board. GPIO pins are created on first lookup.
func NewBoard(conf *Config) *Board {
	b := &Board{
		Analogs:  map[string]*Analog{},
		GPIOPins: map[string]*GPIOPin{},
	}
	if conf != nil {
		for _, c := range conf.Analogs {
			b.Analogs[c.Name] = &Analog{max: c.MaxValue()}
		}
	}
	return b
}

// A Board provides dummy data from fake parts in order to implement a Board.
type Board struct {
	mu         sync.RWMutex
	Analogs    map[string]*Analog
	GPIOPins   map[string]*GPIOPin
	CloseCount int
}

var _ board.Board = (*Board)(nil)

// AnalogByName returns the analog pin by the given name if it exists.
func (b *Board) AnalogByName(name string) (board.Analog, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	a, ok := b.Analogs[name]
	if !ok {
		return nil, board.NewPinNotFoundError("analog", name)
	}
	return a, nil
}

// GPIOPinByName returns the GPIO pin by the given name, creating it if needed.
func (b *Board) GPIOPinByName(name string) (board.GPIOPin, error) {
	return b.Pin(name), nil
}

// Pin returns the concrete fake pin by name, creating it if needed.
func (b *Board) Pin(name string) *GPIOPin {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.GPIOPins[name]
	if !ok {
		p = &GPIOPin{}
		b.GPIOPins[name] = p
	}
	return p
}

// Close counts closes.
func (b *Board) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.CloseCount++
	return nil
}

// An Analog reads back the same set value, or whatever Source returns when it is set.
type Analog struct {
	Mu    sync.RWMutex
	Value int
	// Source, when set, is consulted on every Read instead of Value.
	Source func(ctx context.Context) (int, error)
	max    int
}

// Read returns the current fake reading.
func (a *Analog) Read(ctx context.Context, extra map[string]interface{}) (board.AnalogValue, error) {
	a.Mu.RLock()
	defer a.Mu.RUnlock()
	value := a.Value
	if a.Source != nil {
		v, err := a.Source(ctx)
		if err != nil {
			return board.AnalogValue{}, err
		}
		value = v
	}
	return board.AnalogValue{Value: value, Min: 0, Max: float32(a.max), StepSize: 1}, nil
}

// Set is used to set the value of an Analog.
func (a *Analog) Set(value int) {
	a.Mu.Lock()
	defer a.Mu.Unlock()
	a.Value = value
}

// A GPIOPin reads back the same set values.
type GPIOPin struct {
	mu       sync.Mutex
	high     bool
	setCount int
}

// Set sets the pin to either low or high.
func (gp *GPIOPin) Set(ctx context.Context, high bool, extra map[string]interface{}) error {
	gp.mu.Lock()
	defer gp.mu.Unlock()
	gp.high = high
	gp.setCount++
	return nil
}

// Get gets the high/low state of the pin.
func (gp *GPIOPin) Get(ctx context.Context, extra map[string]interface{}) (bool, error) {
	gp.mu.Lock()
	defer gp.mu.Unlock()
	return gp.high, nil
}

// SetCount returns how many times Set was called.
func (gp *GPIOPin) SetCount() int {
	gp.mu.Lock()
	defer gp.mu.Unlock()
	return gp.setCount
}
