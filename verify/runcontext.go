// Package verify is the verification engine of the bench: it resolves which board is under test,
// validates its analog reports, runs the toggle-confirmation protocol over every output and input
// line, tracks activity counters and combines everything into a per-run verdict.
package verify

import (
	"go.uber.org/atomic"

	"go.viam.com/ecubench/catalog"
	"go.viam.com/ecubench/protocol"
)

// Resolution binds the board under test to a catalog profile.
type Resolution struct {
	Board    *catalog.BoardProfile
	Revision int
}

// RevisionLetter renders the revision as a letter.
func (r *Resolution) RevisionLetter() string {
	return catalog.RevisionLetter(r.Revision)
}

// RunContext is the state of one test run shared between the receive loop and the coordinator.
// Every field the receive loop writes is a single atomic word so the coordinator always observes
// the receive loop's writes when it reads the verdict.
type RunContext struct {
	goodPackets      atomic.Bool
	analogReceived   atomic.Bool
	identityReceived atomic.Bool
	identifyFailed   atomic.Bool
	engineRequested  atomic.Bool

	resolution        atomic.Pointer[Resolution]
	inventory         atomic.Pointer[protocol.Inventory]
	catalog           atomic.Pointer[catalog.Catalog]
	secondsSinceReset atomic.Uint32
	analogFailures    atomic.Int32

	counters *CounterStatus
}

// NewRunContext returns a context already reset against cat.
func NewRunContext(cat *catalog.Catalog) *RunContext {
	rc := &RunContext{counters: NewCounterStatus()}
	rc.Reset(cat)
	return rc
}

// Reset clears all per-run state. A nil catalog keeps the previous one.
func (rc *RunContext) Reset(cat *catalog.Catalog) {
	if cat != nil {
		rc.catalog.Store(cat)
	}
	rc.goodPackets.Store(true)
	rc.analogReceived.Store(false)
	rc.identityReceived.Store(false)
	rc.identifyFailed.Store(false)
	rc.engineRequested.Store(false)
	rc.resolution.Store(nil)
	rc.inventory.Store(nil)
	rc.secondsSinceReset.Store(0)
	rc.analogFailures.Store(0)
	rc.counters.reset()
}

// Fail marks the run as failed by a bad packet.
func (rc *RunContext) Fail() {
	rc.goodPackets.Store(false)
}

// GoodPackets reports whether no packet has failed the run yet.
func (rc *RunContext) GoodPackets() bool {
	return rc.goodPackets.Load()
}

// AnalogReceived reports whether an analog frame was processed this run.
func (rc *RunContext) AnalogReceived() bool {
	return rc.analogReceived.Load()
}

// IdentityReceived reports whether any board status frame arrived this run.
func (rc *RunContext) IdentityReceived() bool {
	return rc.identityReceived.Load()
}

// IsHappyCanTest is the CAN side of the verdict: packet integrity and at least one analog frame.
func (rc *RunContext) IsHappyCanTest() bool {
	return rc.goodPackets.Load() && rc.analogReceived.Load()
}

// Resolved returns the board resolution, or nil.
func (rc *RunContext) Resolved() *Resolution {
	return rc.resolution.Load()
}

// Inventory returns the output inventory reported by the board.
func (rc *RunContext) Inventory() (protocol.Inventory, bool) {
	inv := rc.inventory.Load()
	if inv == nil {
		return protocol.Inventory{}, false
	}
	return *inv, true
}

// SecondsSinceReset is the board's uptime as of its last status frame.
func (rc *RunContext) SecondsSinceReset() uint32 {
	return rc.secondsSinceReset.Load()
}

// AnalogFailures counts out-of-range analog readings this run.
func (rc *RunContext) AnalogFailures() int {
	return int(rc.analogFailures.Load())
}

// Catalog returns the catalog the run resolves against.
func (rc *RunContext) Catalog() *catalog.Catalog {
	return rc.catalog.Load()
}

// Counters returns the activity counters of the run.
func (rc *RunContext) Counters() *CounterStatus {
	return rc.counters
}
