package inject

import (
	"context"

	"go.viam.com/ecubench/rig"
)

// Rig is an injectable rig.Rig.
type Rig struct {
	rig.Rig
	SampleFunc         func(ctx context.Context, channel int) (float64, error)
	SelectAddressFunc  func(ctx context.Context, address int) error
	SelectScenarioFunc func(ctx context.Context, scenario int) error
	StimulateFunc      func(ctx context.Context, line int, high bool) error
}

// Sample calls the injected Sample or the real version.
func (r *Rig) Sample(ctx context.Context, channel int) (float64, error) {
	if r.SampleFunc == nil {
		return r.Rig.Sample(ctx, channel)
	}
	return r.SampleFunc(ctx, channel)
}

// SelectAddress calls the injected SelectAddress or the real version.
func (r *Rig) SelectAddress(ctx context.Context, address int) error {
	if r.SelectAddressFunc == nil {
		return r.Rig.SelectAddress(ctx, address)
	}
	return r.SelectAddressFunc(ctx, address)
}

// SelectScenario calls the injected SelectScenario or the real version.
func (r *Rig) SelectScenario(ctx context.Context, scenario int) error {
	if r.SelectScenarioFunc == nil {
		return r.Rig.SelectScenario(ctx, scenario)
	}
	return r.SelectScenarioFunc(ctx, scenario)
}

// Stimulate calls the injected Stimulate or the real version.
func (r *Rig) Stimulate(ctx context.Context, line int, high bool) error {
	if r.StimulateFunc == nil {
		return r.Rig.Stimulate(ctx, line, high)
	}
	return r.StimulateFunc(ctx, line, high)
}
