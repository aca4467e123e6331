package verify

import (
	"context"
	"sync"
	"testing"

	"go.viam.com/test"

	"go.viam.com/ecubench/catalog"
	"go.viam.com/ecubench/protocol"
	"go.viam.com/ecubench/testutils/inject"
)

// benchCatalog has a single board identified by codes 10 and 20 reporting only its battery.
func benchCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(catalog.BoardProfile{
		Name:                "bench",
		IdentityCodes:       []uint16{10, 20},
		DesiredEngineConfig: catalog.NoPreference,
		Channels:            []catalog.ChannelSpec{{Name: "BATT", Multiplier: 6, AcceptMin: 9, AcceptMax: 15}},
		EventExpected:       []bool{true},
	})
	test.That(t, err, test.ShouldBeNil)
	return cat
}

type sentFrames struct {
	mu     sync.Mutex
	frames []protocol.Frame
}

func (s *sentFrames) all() []protocol.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]protocol.Frame(nil), s.frames...)
}

// recordingSink returns a bus that records every frame sent on it.
func recordingSink() (*inject.Bus, *sentFrames) {
	sent := &sentFrames{}
	return &inject.Bus{
		SendFunc: func(ctx context.Context, frame protocol.Frame) error {
			sent.mu.Lock()
			defer sent.mu.Unlock()
			sent.frames = append(sent.frames, frame)
			return nil
		},
	}, sent
}

func statusFrame(code, engine uint16) protocol.Frame {
	return protocol.StatusReport{BoardID: code, SecondsSinceReset: 42, EngineType: engine}.Encode()
}

func mustFrame(t *testing.T, id protocol.PacketID, payload ...byte) protocol.Frame {
	t.Helper()
	f, err := protocol.NewFrame(id, payload...)
	test.That(t, err, test.ShouldBeNil)
	return f
}
