package sim

import (
	"encoding/json"
	"fmt"
	"math"
)

// Phase is the pack-wide simulation phase. Transitions are monotonic within a
// run: charging never comes back once left, and done is terminal.
type Phase int

const (
	PhaseCharging Phase = iota
	PhaseBalancing
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseCharging:
		return "charging"
	case PhaseBalancing:
		return "balancing"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the phase as its string name.
func (p Phase) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON decodes a phase from its string name.
func (p *Phase) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "charging":
		*p = PhaseCharging
	case "balancing":
		*p = PhaseBalancing
	case "done":
		*p = PhaseDone
	default:
		return fmt.Errorf("unknown phase %q", s)
	}
	return nil
}

// Engine owns a series-connected cell pack and advances it one discrete step
// per call. It holds no locks and performs no I/O; a single driver goroutine
// calls Step and reads Snapshot between steps. Cell slices handed out are
// always copies, so readers can never violate the soc bounds.
type Engine struct {
	specs          []CellSpec
	cells          []Cell
	strategy       Strategy
	phase          Phase
	chargingActive bool
	steps          int
}

// New creates an engine over the given cell specs. A nil or empty spec list
// selects the default three-cell pack. The engine starts under the passive
// strategy; use Reset to pick another case.
func New(specs []CellSpec) *Engine {
	if len(specs) == 0 {
		specs = DefaultPack()
	}
	e := &Engine{
		specs:    append([]CellSpec(nil), specs...),
		strategy: StrategyPassive,
	}
	e.rebuild()
	return e
}

// Reset selects the strategy for the given case identifier and rebuilds the
// pack from its specs, returning the engine to the start of a run. It is the
// only operation that can fail.
func (e *Engine) Reset(caseID int) error {
	strat, err := StrategyFromCase(caseID)
	if err != nil {
		return err
	}
	e.strategy = strat
	e.rebuild()
	return nil
}

func (e *Engine) rebuild() {
	e.cells = make([]Cell, len(e.specs))
	for i, s := range e.specs {
		e.cells[i] = Cell{
			Capacity:           s.CapacityAh,
			SoC:                s.InitialSoC,
			InternalResistance: s.ResistanceOhm,
		}
	}
	e.phase = PhaseCharging
	e.chargingActive = true
	e.steps = 0
}

// Strategy returns the active strategy.
func (e *Engine) Strategy() Strategy { return e.strategy }

// Phase returns the current pack-wide phase.
func (e *Engine) Phase() Phase { return e.phase }

// ChargingActive reports whether charge current contributes to voltage
// readings and soc growth.
func (e *Engine) ChargingActive() bool { return e.chargingActive }

// Steps returns the number of steps executed since the last reset.
func (e *Engine) Steps() int { return e.steps }

// CellCount returns the number of cells in the pack.
func (e *Engine) CellCount() int { return len(e.cells) }

// Done reports whether the terminal phase has been reached.
func (e *Engine) Done() bool { return e.phase == PhaseDone }

// MeasuredVoltage returns the terminal voltage of cell i under the given
// current. While charging is inactive the IR-drop term is suppressed entirely
// and the reading collapses to pure OCV, whatever current the caller passes:
// the balancing phase compares plain OCVs.
func (e *Engine) MeasuredVoltage(i int, current float64) float64 {
	c := e.cells[i]
	if !e.chargingActive {
		return c.OCV()
	}
	return c.OCV() + current*c.InternalResistance
}

// EffectiveCurrent returns the charge current for the next step. Only the
// regulated strategy ever deviates from IBase.
func (e *Engine) EffectiveCurrent() float64 {
	if e.strategy != StrategyRegulated {
		return IBase
	}
	return e.regulatedCurrent()
}

// regulatedCurrent tapers the current to a tenth of IBase once any cell's
// voltage at IBase reaches the protection threshold.
func (e *Engine) regulatedCurrent() float64 {
	maxV := math.Inf(-1)
	for i := range e.cells {
		if v := e.MeasuredVoltage(i, IBase); v > maxV {
			maxV = v
		}
	}
	if maxV >= OVP {
		return IBase * 0.1
	}
	return IBase
}

// Step advances the simulation by one tick. Once the pack is done, Step is a
// strict no-op and may be called any number of times.
func (e *Engine) Step() {
	switch e.phase {
	case PhaseDone:
		return
	case PhaseCharging:
		e.stepCharging()
	case PhaseBalancing:
		e.stepBalancing()
	}
	e.steps++
}

func (e *Engine) stepCharging() {
	current := e.EffectiveCurrent()

	if e.chargingActive {
		for i := range e.cells {
			e.cells[i].SoC += current / e.cells[i].Capacity
			if e.cells[i].SoC > 1 {
				e.cells[i].SoC = 1
			}
		}
	}

	switch e.strategy {
	case StrategyPassive, StrategyActive:
		// Overvoltage trip: on the first cell at or above OVP the whole pack
		// stops charging and moves to the balancing phase.
		for i := range e.cells {
			if e.MeasuredVoltage(i, current) >= OVP {
				e.chargingActive = false
				e.phase = PhaseBalancing
				break
			}
		}
	case StrategyEqualize:
		maxIdx, minIdx := e.extremeCells(current)
		if e.MeasuredVoltage(maxIdx, current)-e.MeasuredVoltage(minIdx, current) > TolVoltage {
			e.transfer(maxIdx, minIdx)
		}
	}

	if e.strategy == StrategyEqualize || e.strategy == StrategyRegulated {
		e.checkFullAndBalanced()
	}
}

func (e *Engine) stepBalancing() {
	switch e.strategy {
	case StrategyPassive:
		// Bleed every cell sitting above the lowest voltage plus tolerance.
		// Energy is dissipated, never transferred.
		_, minIdx := e.extremeCells(0)
		minV := e.MeasuredVoltage(minIdx, 0)
		for i := range e.cells {
			if e.MeasuredVoltage(i, 0) > minV+TolVoltage {
				e.cells[i].SoC -= DPassive
				if e.cells[i].SoC < 0 {
					e.cells[i].SoC = 0
				}
			}
		}
	case StrategyActive:
		maxIdx, minIdx := e.extremeCells(0)
		if e.MeasuredVoltage(maxIdx, 0)-e.MeasuredVoltage(minIdx, 0) > TolVoltage {
			e.transfer(maxIdx, minIdx)
		}
	}

	maxIdx, minIdx := e.extremeCells(0)
	if e.MeasuredVoltage(maxIdx, 0)-e.MeasuredVoltage(minIdx, 0) < TolVoltage {
		e.phase = PhaseDone
	}
}

// checkFullAndBalanced moves the pack to done once every cell is essentially
// full and the voltage spread is inside tolerance. The regulated current is
// consulted only while the regulated strategy is still actively charging;
// otherwise the check uses plain IBase.
func (e *Engine) checkFullAndBalanced() {
	current := IBase
	if e.strategy == StrategyRegulated && e.chargingActive {
		current = e.regulatedCurrent()
	}
	full := true
	minV := math.Inf(1)
	maxV := math.Inf(-1)
	for i := range e.cells {
		if e.cells[i].SoC < 0.99 {
			full = false
		}
		v := e.MeasuredVoltage(i, current)
		if v > maxV {
			maxV = v
		}
		if v < minV {
			minV = v
		}
	}
	if full && maxV-minV < TolVoltage {
		e.phase = PhaseDone
	}
}

// extremeCells scans the pack once and returns the indices of the highest and
// lowest measured voltage. Ties keep the earliest index: updates happen only
// on strict comparisons.
func (e *Engine) extremeCells(current float64) (maxIdx, minIdx int) {
	maxV := e.MeasuredVoltage(0, current)
	minV := maxV
	for i := 1; i < len(e.cells); i++ {
		v := e.MeasuredVoltage(i, current)
		if v > maxV {
			maxV = v
			maxIdx = i
		}
		if v < minV {
			minV = v
			minIdx = i
		}
	}
	return maxIdx, minIdx
}

// transfer moves DActive of soc from donor to receiver. Only the donor's
// lower bound and the receiver's upper bound are enforced; the opposite
// bounds are not checked.
func (e *Engine) transfer(donor, receiver int) {
	e.cells[donor].SoC -= DActive
	if e.cells[donor].SoC < 0 {
		e.cells[donor].SoC = 0
	}
	e.cells[receiver].SoC += DActive
	if e.cells[receiver].SoC > 1 {
		e.cells[receiver].SoC = 1
	}
}
