package config

import (
	"fmt"

	"github.com/vanerueda/packsim/core/sim"
)

// SimulationConfig selects the case to run and how fast to run it.
type SimulationConfig struct {
	// Case is the strategy identifier, 1 through 4.
	Case int `json:"case"`
	// TickMS is the driver tick interval in milliseconds.
	TickMS int `json:"tick_ms"`
	// MaxSteps bounds the run; 0 means run until the terminal phase.
	MaxSteps int `json:"max_steps"`
	// Cells optionally overrides the default three-cell example pack.
	Cells []sim.CellSpec `json:"cells"`
}

// SetDefaults applies sane defaults.
func (c *SimulationConfig) SetDefaults() {
	if c.Case == 0 {
		c.Case = 1
	}
	if c.TickMS == 0 {
		c.TickMS = 50
	}
}

// Validate checks the case identifier and any cell overrides.
func (c SimulationConfig) Validate() error {
	if _, err := sim.StrategyFromCase(c.Case); err != nil {
		return err
	}
	if c.TickMS < 0 {
		return fmt.Errorf("tick_ms must be positive")
	}
	for i, cell := range c.Cells {
		if cell.CapacityAh <= 0 {
			return fmt.Errorf("cell %d: capacity must be positive", i)
		}
		if cell.InitialSoC < 0 || cell.InitialSoC > 1 {
			return fmt.Errorf("cell %d: initial soc must be in [0,1]", i)
		}
		if cell.ResistanceOhm <= 0 {
			return fmt.Errorf("cell %d: resistance must be positive", i)
		}
	}
	return nil
}
