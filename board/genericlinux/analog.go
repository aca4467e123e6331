package genericlinux

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"go.viam.com/ecubench/board"
)

// iioAnalog reads an ADC channel through the IIO sysfs attribute in_voltage<N>_raw.
type iioAnalog struct {
	path string
	max  int
}

func newIIOAnalog(root, device string, conf board.AnalogConfig) *iioAnalog {
	return &iioAnalog{
		path: filepath.Join(root, device, "in_voltage"+conf.Pin+"_raw"),
		max:  conf.MaxValue(),
	}
}

func (a *iioAnalog) Read(ctx context.Context, extra map[string]interface{}) (board.AnalogValue, error) {
	raw, err := os.ReadFile(a.path)
	if err != nil {
		return board.AnalogValue{}, errors.Wrapf(err, "cannot read analog %s", a.path)
	}
	value, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return board.AnalogValue{}, errors.Wrapf(err, "unexpected analog reading in %s", a.path)
	}
	return board.AnalogValue{Value: value, Min: 0, Max: float32(a.max), StepSize: 1}, nil
}
