//go:build !linux

// Package genericlinux is for Linux boards driving the rig. On other platforms NewBoard fails.
package genericlinux

import (
	"github.com/pkg/errors"

	"go.viam.com/ecubench/board"
	"go.viam.com/ecubench/logging"
)

// NewBoard is only supported on Linux.
func NewBoard(conf Config, logger logging.Logger) (board.Board, error) {
	return nil, errors.New("genericlinux boards are only supported on linux")
}
