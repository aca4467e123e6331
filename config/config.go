// Package config defines the structures to configure a bench and the means to read them from
// disk.
package config

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/ecubench/board/genericlinux"
	"go.viam.com/ecubench/canbus/slcan"
	"go.viam.com/ecubench/catalog"
	"go.viam.com/ecubench/logging"
	"go.viam.com/ecubench/rig"
	"go.viam.com/ecubench/sim"
	"go.viam.com/ecubench/verify"
)

// A Config describes the configuration of a bench.
type Config struct {
	Bus BusConfig `json:"bus"`
	Rig RigConfig `json:"rig"`
	Run RunConfig `json:"run"`
	Log LogConfig `json:"log"`

	// Boards replaces the built-in board catalog when not empty.
	Boards []catalog.BoardProfile `json:"boards,omitempty"`
	// Sim describes the simulated ECU used by the sim bus.
	Sim *sim.Config `json:"sim,omitempty"`

	ConfigFilePath string `json:"-"`
}

// BusType selects the CAN transport.
type BusType string

// The supported CAN transports.
const (
	BusSocketCAN = BusType("socketcan")
	BusSLCAN     = BusType("slcan")
	BusSim       = BusType("sim")
)

// BusConfig describes how the bench reaches the CAN bus.
type BusConfig struct {
	Type BusType `json:"type"`
	// Interface is the network interface of a socketcan bus, e.g. can0.
	Interface string `json:"interface,omitempty"`
	// Port, BaudRate and Bitrate configure an slcan serial adapter.
	Port     string `json:"port,omitempty"`
	BaudRate int    `json:"baud_rate,omitempty"`
	Bitrate  int    `json:"bitrate,omitempty"`
}

// SLCAN returns the adapter config of an slcan bus.
func (conf *BusConfig) SLCAN() slcan.Config {
	return slcan.Config{Port: conf.Port, BaudRate: conf.BaudRate, Bitrate: conf.Bitrate}
}

// Validate ensures all parts of the config are valid.
func (conf *BusConfig) Validate(path string) error {
	switch conf.Type {
	case BusSocketCAN:
		if conf.Interface == "" {
			return utils.NewConfigValidationFieldRequiredError(path, "interface")
		}
	case BusSLCAN:
		slcanConf := conf.SLCAN()
		return slcanConf.Validate(path)
	case BusSim:
	case "":
		return utils.NewConfigValidationFieldRequiredError(path, "type")
	default:
		return utils.NewConfigValidationError(path, errors.Errorf("unknown bus type %q", conf.Type))
	}
	return nil
}

// RigConfig describes the rig hardware: the board hosting it and how its lines are wired.
type RigConfig struct {
	Board genericlinux.Config `json:"board"`
	Lines rig.Config          `json:"lines"`
}

// Validate ensures all parts of the config are valid.
func (conf *RigConfig) Validate(path string) error {
	if err := conf.Board.Validate(path + ".board"); err != nil {
		return err
	}
	return conf.Lines.Validate(path + ".lines")
}

// RunConfig tunes the test runs.
type RunConfig struct {
	Pause          time.Duration `json:"pause,omitempty"`
	Settle         time.Duration `json:"settle,omitempty"`
	InventoryPolls int           `json:"inventory_polls,omitempty"`
	Runs           int           `json:"runs,omitempty"`
	InputLines     int           `json:"input_lines,omitempty"`

	OutputChannelBase int `json:"output_channel_base,omitempty"`
	InputChannelBase  int `json:"input_channel_base,omitempty"`
	DCChannelBase     int `json:"dc_channel_base,omitempty"`

	DisplayCANReceive bool `json:"can_receive,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *RunConfig) Validate(path string) error {
	for name, v := range map[string]time.Duration{"pause": conf.Pause, "settle": conf.Settle} {
		if v < 0 {
			return utils.NewConfigValidationError(path, errors.Errorf("%s cannot be negative", name))
		}
	}
	for name, v := range map[string]int{
		"inventory_polls":     conf.InventoryPolls,
		"runs":                conf.Runs,
		"input_lines":         conf.InputLines,
		"output_channel_base": conf.OutputChannelBase,
		"input_channel_base":  conf.InputChannelBase,
		"dc_channel_base":     conf.DCChannelBase,
	} {
		if v < 0 {
			return utils.NewConfigValidationError(path, errors.Errorf("%s cannot be negative", name))
		}
	}
	return nil
}

// Coordinator returns the coordinator settings of the run section.
func (conf *RunConfig) Coordinator() verify.Config {
	return verify.Config{
		Pause:             conf.Pause,
		Settle:            conf.Settle,
		InventoryPolls:    conf.InventoryPolls,
		Runs:              conf.Runs,
		InputLines:        conf.InputLines,
		OutputChannelBase: conf.OutputChannelBase,
		InputChannelBase:  conf.InputChannelBase,
		DCChannelBase:     conf.DCChannelBase,
	}
}

// LogConfig configures the bench logger.
type LogConfig struct {
	Level string `json:"level,omitempty"`
	// File, when set, receives a copy of every log line, rotated past MaxSizeMB.
	File       string `json:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *LogConfig) Validate(path string) error {
	if conf.Level != "" {
		if _, err := logging.LevelFromString(conf.Level); err != nil {
			return utils.NewConfigValidationError(path, err)
		}
	}
	if conf.MaxSizeMB < 0 || conf.MaxBackups < 0 {
		return utils.NewConfigValidationError(path, errors.New("log rotation limits cannot be negative"))
	}
	return nil
}

// Validate checks every section and returns all problems found.
func (c *Config) Validate() error {
	err := multierr.Combine(
		c.Bus.Validate("bus"),
		c.Run.Validate("run"),
		c.Log.Validate("log"),
	)
	if c.Bus.Type == BusSim {
		if c.Sim != nil {
			err = multierr.Append(err, c.Sim.Validate("sim"))
		}
	} else {
		err = multierr.Append(err, c.Rig.Validate("rig"))
	}
	for idx := range c.Boards {
		err = multierr.Append(err, c.Boards[idx].Validate(fmt.Sprintf("boards.%d", idx)))
	}
	return err
}

// Catalog returns the board catalog the bench resolves boards against.
func (c *Config) Catalog() (*catalog.Catalog, error) {
	if len(c.Boards) == 0 {
		return catalog.Default(), nil
	}
	return catalog.New(c.Boards...)
}
