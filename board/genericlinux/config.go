package genericlinux

import (
	"fmt"

	"go.viam.com/utils"

	"go.viam.com/ecubench/board"
)

// DefaultIIORoot is where the kernel publishes industrial I/O devices.
const DefaultIIORoot = "/sys/bus/iio/devices"

// A Config describes a Linux single-board computer attached to the rig.
type Config struct {
	// GPIOChip is the character device holding the rig lines, e.g. /dev/gpiochip0.
	GPIOChip string `json:"gpio_chip"`
	// IIODevice is the IIO device directory name of the ADC, e.g. iio:device0.
	IIODevice string               `json:"iio_device,omitempty"`
	IIORoot   string               `json:"iio_root,omitempty"`
	Analogs   []board.AnalogConfig `json:"analogs,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if conf.GPIOChip == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "gpio_chip")
	}
	if len(conf.Analogs) != 0 && conf.IIODevice == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "iio_device")
	}
	for idx, c := range conf.Analogs {
		if err := c.Validate(fmt.Sprintf("%s.%s.%d", path, "analogs", idx)); err != nil {
			return err
		}
	}
	return nil
}
