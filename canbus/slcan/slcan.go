// Package slcan implements a CAN bus over a USB serial adapter speaking the Lawicel ASCII
// protocol. Most bench rigs reach the ECU through such a dongle.
package slcan

import (
	"bufio"
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"
	"go.bug.st/serial"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/ecubench/canbus"
	"go.viam.com/ecubench/logging"
	"go.viam.com/ecubench/protocol"
)

// Config describes how to reach the adapter.
type Config struct {
	Port     string `json:"port"`
	BaudRate int    `json:"baud_rate,omitempty"`
	Bitrate  int    `json:"bitrate,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if conf.Port == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "port")
	}
	if conf.Bitrate != 0 {
		if _, err := BitrateCommand(conf.Bitrate); err != nil {
			return errors.Wrap(err, path)
		}
	}
	return nil
}

const (
	defaultBaudRate = 115200
	defaultBitrate  = 500000
	rxQueueDepth    = 256
)

// Bus is a canbus.Bus over an slcan adapter.
type Bus struct {
	port   io.ReadWriteCloser
	logger logging.Logger

	writeMu sync.Mutex
	frames  chan protocol.Frame
	done    chan struct{}

	closeOnce sync.Once
	readers   sync.WaitGroup
}

var _ canbus.Bus = (*Bus)(nil)

// Open opens the serial port named in the config and starts the adapter.
func Open(conf Config, logger logging.Logger) (*Bus, error) {
	baud := conf.BaudRate
	if baud == 0 {
		baud = defaultBaudRate
	}
	path := conf.Port
	if path == AutoPort {
		var err error
		if path, err = Search(KnownAdapters); err != nil {
			return nil, err
		}
		logger.Infow("found slcan adapter", "port", path)
	}
	port, err := serial.Open(path, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open slcan port %s", path)
	}
	return New(port, conf.Bitrate, logger)
}

// New runs the slcan protocol over an already open port. A zero bitrate selects 500 kbit/s.
func New(port io.ReadWriteCloser, bitrate int, logger logging.Logger) (*Bus, error) {
	if bitrate == 0 {
		bitrate = defaultBitrate
	}
	setup, err := BitrateCommand(bitrate)
	if err != nil {
		return nil, err
	}
	b := &Bus{
		port:   port,
		logger: logger,
		frames: make(chan protocol.Frame, rxQueueDepth),
		done:   make(chan struct{}),
	}
	// Close first in case the adapter was left open by a previous session.
	for _, cmd := range []string{"C\r", setup, "O\r"} {
		if err := b.write(cmd); err != nil {
			return nil, multierr.Combine(err, port.Close())
		}
	}
	b.readers.Add(1)
	utils.ManagedGo(b.readLoop, b.readers.Done)
	return b, nil
}

func (b *Bus) write(s string) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	_, err := io.WriteString(b.port, s)
	return err
}

func (b *Bus) readLoop() {
	reader := bufio.NewReader(b.port)
	for {
		line, err := reader.ReadString('\r')
		if err != nil {
			select {
			case <-b.done:
			default:
				b.logger.Errorw("slcan read failed", "error", err)
				b.closeOnce.Do(func() { close(b.done) })
			}
			return
		}
		line = line[:len(line)-1]
		// Acknowledgements ("z", "Z", empty) and the error bell carry no frame.
		if line == "" || line == "z" || line == "Z" || line[0] == '\a' {
			continue
		}
		frame, err := Decode(line)
		if err != nil {
			b.logger.Debugw("dropping slcan line", "line", line, "error", err)
			continue
		}
		select {
		case b.frames <- frame:
		case <-b.done:
			return
		default:
			b.logger.Warn("slcan receive queue overrun, dropping frame")
		}
	}
}

// Receive returns the next frame read from the adapter.
func (b *Bus) Receive(ctx context.Context) (protocol.Frame, error) {
	select {
	case f := <-b.frames:
		return f, nil
	case <-b.done:
		return protocol.Frame{}, canbus.ErrClosed
	case <-ctx.Done():
		return protocol.Frame{}, ctx.Err()
	}
}

// Send transmits a frame through the adapter.
func (b *Bus) Send(ctx context.Context, frame protocol.Frame) error {
	select {
	case <-b.done:
		return canbus.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	cmd, err := Encode(frame)
	if err != nil {
		return err
	}
	return b.write(cmd)
}

// Close closes the CAN channel and the port.
func (b *Bus) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.done)
		err = b.write("C\r")
	})
	err = multierr.Combine(err, b.port.Close())
	b.readers.Wait()
	return err
}
