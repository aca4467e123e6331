package cli

import (
	"fmt"
	"sync"
	"time"

	"github.com/pterm/pterm"
	"golang.org/x/time/rate"

	"go.viam.com/ecubench/verify"
)

type progressSpinner interface {
	Stop() error
	Success(...any)
	Fail(...any)
	UpdateText(string)
}

type progressSpinnerFactory func(string) (progressSpinner, error)

var defaultSpinnerFactory progressSpinnerFactory = func(text string) (progressSpinner, error) {
	spinner, err := pterm.DefaultSpinner.
		WithRemoveWhenDone(false).
		WithText(text).
		Start()
	if err != nil {
		return nil, err
	}
	return spinner, nil
}

// spinnerRefresh bounds how often the spinner text is rewritten.
const spinnerRefresh = 100 * time.Millisecond

// runProgress shows one spinner per run, updated after every toggle test.
type runProgress struct {
	mu       sync.Mutex
	factory  progressSpinnerFactory
	spinner  progressSpinner
	limiter  *rate.Limiter
	disabled bool
}

func newRunProgress(disabled bool) *runProgress {
	return &runProgress{
		factory:  defaultSpinnerFactory,
		limiter:  rate.NewLimiter(rate.Every(spinnerRefresh), 1),
		disabled: disabled,
	}
}

func progressText(p verify.Progress) string {
	return fmt.Sprintf("run #%d: %d/%d %s %s", p.Run, p.Step, p.Total, p.Result.Kind, p.Result.Name)
}

// Update is a verify.Coordinator progress callback.
func (rp *runProgress) Update(p verify.Progress) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	if rp.disabled {
		return
	}
	if rp.spinner == nil {
		spinner, err := rp.factory(progressText(p))
		if err != nil {
			rp.disabled = true
			return
		}
		rp.spinner = spinner
		return
	}
	if p.Step == p.Total || rp.limiter.Allow() {
		rp.spinner.UpdateText(progressText(p))
	}
}

// Done closes the spinner of the run with its verdict.
func (rp *runProgress) Done(v verify.Verdict) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	if rp.spinner == nil {
		return
	}
	msg := fmt.Sprintf("run #%d: %d lines tested", v.Run, len(v.Results))
	if v.Pass {
		rp.spinner.Success(msg)
	} else {
		rp.spinner.Fail(msg)
	}
	rp.spinner = nil
}
