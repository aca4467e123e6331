package board

import "github.com/pkg/errors"

var errBits = errors.New("bits must be between 1 and 24")

// NewPinNotFoundError is returned when a named pin or analog does not exist on a board.
func NewPinNotFoundError(kind, name string) error {
	return errors.Errorf("can't find %s (%s)", kind, name)
}
