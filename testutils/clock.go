// Package testutils holds helpers shared by tests across the module.
package testutils

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// InstantClock is a mock clock whose Sleep and After advance time immediately instead of
// waiting for the test to do so. Every duration waited on is recorded.
type InstantClock struct {
	*clock.Mock

	mu     sync.Mutex
	waited []time.Duration
}

// NewInstantClock returns an InstantClock starting at the mock epoch.
func NewInstantClock() *InstantClock {
	return &InstantClock{Mock: clock.NewMock()}
}

// Sleep advances the clock by d.
func (c *InstantClock) Sleep(d time.Duration) {
	c.record(d)
	c.Mock.Add(d)
}

// After returns a channel that has already fired, advancing the clock by d.
func (c *InstantClock) After(d time.Duration) <-chan time.Time {
	c.record(d)
	ch := c.Mock.After(d)
	c.Mock.Add(d)
	return ch
}

func (c *InstantClock) record(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.waited = append(c.waited, d)
}

// Waited returns every duration slept or waited on, in order.
func (c *InstantClock) Waited() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.waited...)
}
