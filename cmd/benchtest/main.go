// Package main is the benchtest command itself.
package main

import (
	"log"
	"os"

	"go.viam.com/ecubench/cli"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
