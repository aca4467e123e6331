package verify

import (
	"go.uber.org/atomic"

	"go.viam.com/ecubench/catalog"
	"go.viam.com/ecubench/logging"
)

// Counter remembers whether an activity counter was ever seen nonzero.
type Counter struct {
	Name string
	// Index is both the byte of the counters frame and the expectation slot.
	Index   int
	nonZero atomic.Bool
}

// NonZero reports whether the counter was ever seen nonzero.
func (c *Counter) NonZero() bool {
	return c.nonZero.Load()
}

func (c *Counter) observe(data []byte) {
	if c.Index < len(data) && data[c.Index] > 0 {
		c.nonZero.Store(true)
	}
}

// CounterStatus holds the event and button counters of a run.
type CounterStatus struct {
	Events  []*Counter
	Buttons []*Counter
}

var (
	eventCounterNames  = []string{"Primary", "Secondary", "VVT1", "VVT2", "VVT3", "VVT4", "VehicleSpeed"}
	buttonCounterNames = []string{"BrakePedal", "ClutchUp", "AcButton"}
)

// NewCounterStatus returns all counters at zero.
func NewCounterStatus() *CounterStatus {
	s := &CounterStatus{}
	for i, name := range eventCounterNames {
		s.Events = append(s.Events, &Counter{Name: name, Index: i})
	}
	for i, name := range buttonCounterNames {
		s.Buttons = append(s.Buttons, &Counter{Name: name, Index: i})
	}
	return s
}

func (s *CounterStatus) reset() {
	for _, c := range s.Events {
		c.nonZero.Store(false)
	}
	for _, c := range s.Buttons {
		c.nonZero.Store(false)
	}
}

// ObserveEvents folds an event counters payload in.
func (s *CounterStatus) ObserveEvents(data []byte) {
	for _, c := range s.Events {
		c.observe(data)
	}
}

// ObserveButtons folds a button counters payload in.
func (s *CounterStatus) ObserveButtons(data []byte) {
	for _, c := range s.Buttons {
		c.observe(data)
	}
}

func expected(flags []bool, idx int) bool {
	return idx < len(flags) && flags[idx]
}

// Evaluate checks every counter the board is expected to produce and reports each one still at
// zero. An unresolved board fails on its own.
func (s *CounterStatus) Evaluate(board *catalog.BoardProfile, logger logging.Logger) bool {
	if board == nil {
		logger.Error("* UNKNOWN BOARD ID while trying to check digital input event counter!")
		return false
	}
	happy := true
	for _, c := range s.Events {
		if !expected(board.EventExpected, c.Index) {
			continue
		}
		if !c.NonZero() {
			logger.Errorf("* ZERO %s event counter!", c.Name)
			happy = false
		}
	}
	for _, c := range s.Buttons {
		if !expected(board.ButtonExpected, c.Index) {
			continue
		}
		if !c.NonZero() {
			logger.Errorf("* ZERO %s button counter!", c.Name)
			happy = false
		}
	}
	return happy
}
