// Package cli contains the benchtest command line: it wires a configured bench together and
// runs the verification loop.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	configFlag     = "config"
	simulateFlag   = "simulate"
	runsFlag       = "runs"
	debugFlag      = "debug"
	canReceiveFlag = "can-receive"
	quietFlag      = "quiet"
	traceFlag      = "trace"
)

var app = &cli.App{
	Name:            "benchtest",
	Usage:           "verify ECU boards on the bench",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    configFlag,
			Aliases: []string{"c"},
			Usage:   "load bench configuration from `FILE`",
		},
		&cli.BoolFlag{
			Name:  simulateFlag,
			Usage: "test a simulated ECU instead of the bench hardware",
		},
		&cli.IntFlag{
			Name:  runsFlag,
			Usage: "stop after `N` runs (0 runs until interrupted)",
		},
		&cli.BoolFlag{
			Name:    debugFlag,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
		&cli.BoolFlag{
			Name:  canReceiveFlag,
			Usage: "log every frame received from the ECU",
		},
		&cli.BoolFlag{
			Name:  quietFlag,
			Usage: "do not animate run progress",
		},
		&cli.BoolFlag{
			Name:  traceFlag,
			Usage: "log every toggle cycle, whatever the log level",
		},
	},
	Action: BenchAction,
}

// NewApp returns a new app with the benchtest command wired in.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
