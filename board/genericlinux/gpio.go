//go:build linux

// Package genericlinux is for Linux boards driving the rig: GPIO lines through the character
// device ioctl interface (by way of mkch's gpio package) and ADC channels through IIO sysfs.
package genericlinux

import (
	"context"
	"strconv"
	"sync"

	"github.com/mkch/gpio"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/ecubench/board"
	"go.viam.com/ecubench/logging"
)

const consumer = "ecubench"

type gpioPin struct {
	// These values should both be considered immutable.
	devicePath string
	offset     uint32

	mu   sync.Mutex
	line *gpio.Line
}

// This is a private helper function that should only be called when the mutex is locked.
func (pin *gpioPin) openLine() error {
	if pin.line != nil {
		return nil
	}

	chip, err := gpio.OpenChip(pin.devicePath)
	if err != nil {
		return err
	}
	defer utils.UncheckedErrorFunc(chip.Close)

	// Lines start low; the rig drives every line it uses before sampling.
	line, err := chip.OpenLine(pin.offset, 0, gpio.Output, consumer)
	if err != nil {
		return errors.Wrapf(err, "cannot open line %d on %s", pin.offset, pin.devicePath)
	}
	pin.line = line
	return nil
}

func (pin *gpioPin) Set(ctx context.Context, isHigh bool, extra map[string]interface{}) error {
	pin.mu.Lock()
	defer pin.mu.Unlock()

	if err := pin.openLine(); err != nil {
		return err
	}
	var value byte
	if isHigh {
		value = 1
	}
	return pin.line.SetValue(value)
}

func (pin *gpioPin) Get(ctx context.Context, extra map[string]interface{}) (bool, error) {
	pin.mu.Lock()
	defer pin.mu.Unlock()

	if err := pin.openLine(); err != nil {
		return false, err
	}
	value, err := pin.line.Value()
	if err != nil {
		return false, err
	}
	// Any non-zero value is high.
	return value != 0, nil
}

func (pin *gpioPin) close() error {
	pin.mu.Lock()
	defer pin.mu.Unlock()
	if pin.line == nil {
		return nil
	}
	err := pin.line.Close()
	pin.line = nil
	return err
}

// Board is a Linux board whose GPIO pins are named by their line offset on the configured chip.
type Board struct {
	conf    Config
	logger  logging.Logger
	mu      sync.Mutex
	pins    map[uint32]*gpioPin
	analogs map[string]board.Analog
}

var _ board.Board = (*Board)(nil)

// NewBoard returns a board for the given config. Lines are opened lazily on first use.
func NewBoard(conf Config, logger logging.Logger) (*Board, error) {
	if err := conf.Validate("board"); err != nil {
		return nil, err
	}
	root := conf.IIORoot
	if root == "" {
		root = DefaultIIORoot
	}
	b := &Board{
		conf:    conf,
		logger:  logger,
		pins:    map[uint32]*gpioPin{},
		analogs: map[string]board.Analog{},
	}
	for _, c := range conf.Analogs {
		b.analogs[c.Name] = newIIOAnalog(root, conf.IIODevice, c)
	}
	return b, nil
}

// AnalogByName returns the analog by the given name if it exists.
func (b *Board) AnalogByName(name string) (board.Analog, error) {
	a, ok := b.analogs[name]
	if !ok {
		return nil, board.NewPinNotFoundError("analog", name)
	}
	return a, nil
}

// GPIOPinByName returns the GPIO pin at the given line offset.
func (b *Board) GPIOPinByName(name string) (board.GPIOPin, error) {
	offset, err := strconv.ParseUint(name, 10, 32)
	if err != nil {
		return nil, errors.Errorf("GPIO pin name %q is not a line offset", name)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	pin, ok := b.pins[uint32(offset)]
	if !ok {
		pin = &gpioPin{devicePath: b.conf.GPIOChip, offset: uint32(offset)}
		b.pins[uint32(offset)] = pin
	}
	return pin, nil
}

// Close releases every opened line.
func (b *Board) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var err error
	for offset, pin := range b.pins {
		err = multierr.Combine(err, pin.close())
		delete(b.pins, offset)
	}
	b.logger.Debug("released rig GPIO lines")
	return err
}
