package app

import (
	"fmt"

	"github.com/vanerueda/packsim/core/sim"
)

// DefaultStepBound caps headless runs; every strategy on sane packs finishes
// well under it.
const DefaultStepBound = 200000

// RunToCompletion advances the engine until the terminal phase without any
// timing source, invoking observe (when non-nil) after every step. It fails
// if the bound is reached first.
func RunToCompletion(e *sim.Engine, bound int, observe func(sim.Snapshot)) error {
	if bound <= 0 {
		bound = DefaultStepBound
	}
	for i := 0; i < bound; i++ {
		if e.Done() {
			return nil
		}
		e.Step()
		if observe != nil {
			observe(e.Snapshot())
		}
	}
	if !e.Done() {
		return fmt.Errorf("simulation not done after %d steps", bound)
	}
	return nil
}
