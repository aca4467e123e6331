//go:build !linux

// Package socketcan implements a CAN bus over a Linux SocketCAN interface. On other platforms
// Open fails.
package socketcan

import (
	"context"

	"github.com/pkg/errors"

	"go.viam.com/ecubench/canbus"
	"go.viam.com/ecubench/logging"
)

// Open is only supported on Linux.
func Open(ctx context.Context, iface string, logger logging.Logger) (canbus.Bus, error) {
	return nil, errors.Errorf("cannot open %s: socketcan is only supported on linux", iface)
}
