package inject

import (
	"context"

	"go.viam.com/ecubench/board"
)

// Board is an injectable board.Board.
type Board struct {
	board.Board
	AnalogByNameFunc  func(name string) (board.Analog, error)
	GPIOPinByNameFunc func(name string) (board.GPIOPin, error)
	CloseFunc         func(ctx context.Context) error
}

// AnalogByName calls the injected AnalogByName or the real version.
func (b *Board) AnalogByName(name string) (board.Analog, error) {
	if b.AnalogByNameFunc == nil {
		return b.Board.AnalogByName(name)
	}
	return b.AnalogByNameFunc(name)
}

// GPIOPinByName calls the injected GPIOPinByName or the real version.
func (b *Board) GPIOPinByName(name string) (board.GPIOPin, error) {
	if b.GPIOPinByNameFunc == nil {
		return b.Board.GPIOPinByName(name)
	}
	return b.GPIOPinByNameFunc(name)
}

// Close calls the injected Close or the real version.
func (b *Board) Close(ctx context.Context) error {
	if b.CloseFunc == nil {
		return b.Board.Close(ctx)
	}
	return b.CloseFunc(ctx)
}
