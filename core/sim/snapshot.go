package sim

import "fmt"

// CellState is the read-only view of one cell, including the derived voltages
// so renderers never re-derive physics.
type CellState struct {
	Capacity           float64 `json:"capacity_ah"`
	SoC                float64 `json:"soc"`
	InternalResistance float64 `json:"resistance_ohm"`
	OCV                float64 `json:"ocv"`
	Voltage            float64 `json:"voltage"`
}

// FillFraction is the bar-fill fraction a renderer should draw, capped at 1.
func (c CellState) FillFraction() float64 {
	if c.SoC > 1 {
		return 1
	}
	return c.SoC
}

// SoCLabel formats the soc as a percentage with one decimal.
func (c CellState) SoCLabel() string { return fmt.Sprintf("%.1f%%", c.SoC*100) }

// VoltageLabel formats the measured voltage with two decimals.
func (c CellState) VoltageLabel() string { return fmt.Sprintf("%.2fV", c.Voltage) }

// Snapshot is a deep copy of the engine state taken between steps.
type Snapshot struct {
	Case           int         `json:"case"`
	Strategy       string      `json:"strategy"`
	Phase          Phase       `json:"phase"`
	ChargingActive bool        `json:"charging_active"`
	Step           int         `json:"step"`
	Cells          []CellState `json:"cells"`
}

// Spread returns the max-min measured voltage difference across the pack.
func (s Snapshot) Spread() float64 {
	if len(s.Cells) == 0 {
		return 0
	}
	minV := s.Cells[0].Voltage
	maxV := minV
	for _, c := range s.Cells[1:] {
		if c.Voltage > maxV {
			maxV = c.Voltage
		}
		if c.Voltage < minV {
			minV = c.Voltage
		}
	}
	return maxV - minV
}

// PackVoltage returns the series terminal voltage, the sum of cell voltages.
func (s Snapshot) PackVoltage() float64 {
	var sum float64
	for _, c := range s.Cells {
		sum += c.Voltage
	}
	return sum
}

// Snapshot returns the current engine state. Voltages are computed with the
// effective charge current, which collapses to pure OCV whenever charging is
// inactive. The result shares no memory with the engine.
func (e *Engine) Snapshot() Snapshot {
	current := e.EffectiveCurrent()
	cells := make([]CellState, len(e.cells))
	for i, c := range e.cells {
		cells[i] = CellState{
			Capacity:           c.Capacity,
			SoC:                c.SoC,
			InternalResistance: c.InternalResistance,
			OCV:                c.OCV(),
			Voltage:            e.MeasuredVoltage(i, current),
		}
	}
	return Snapshot{
		Case:           e.strategy.Case(),
		Strategy:       e.strategy.String(),
		Phase:          e.phase,
		ChargingActive: e.chargingActive,
		Step:           e.steps,
		Cells:          cells,
	}
}
