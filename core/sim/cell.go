package sim

// Electrical constants shared by every strategy.
const (
	// VMin is the open-circuit voltage at soc=0.
	VMin = 3.0
	// VMax is the open-circuit voltage at soc=1.
	VMax = 4.2
	// OVP is the overvoltage protection threshold.
	OVP = 4.2
	// IBase is the nominal charge current.
	IBase = 0.005
	// DPassive is the soc bled from a high cell per passive-balance step.
	DPassive = 0.001
	// DActive is the soc moved from donor to receiver per active-balance step.
	DActive = 0.001
	// TolVoltage is the equalization tolerance: the pack counts as balanced
	// once the max-min voltage spread falls below it.
	TolVoltage = 0.005
)

// CellSpec holds the construction parameters for one cell. Specs are kept by
// the engine so Reset can rebuild an identical pack.
type CellSpec struct {
	CapacityAh    float64 `json:"capacity_ah"`
	InitialSoC    float64 `json:"initial_soc"`
	ResistanceOhm float64 `json:"resistance_ohm"`
}

// DefaultPack returns the three-cell example pack. The mismatched capacities
// and resistances are what drive the imbalance the balancing strategies
// correct.
func DefaultPack() []CellSpec {
	return []CellSpec{
		{CapacityAh: 3.0, InitialSoC: 0.70, ResistanceOhm: 0.05},
		{CapacityAh: 2.5, InitialSoC: 0.50, ResistanceOhm: 0.08},
		{CapacityAh: 3.5, InitialSoC: 0.90, ResistanceOhm: 0.03},
	}
}

// Cell is one electrochemical cell in the series string. Capacity and
// InternalResistance are fixed for the cell's lifetime; SoC stays in [0,1].
type Cell struct {
	Capacity           float64 // Ah
	SoC                float64 // fraction of full charge
	InternalResistance float64 // ohms
}

// OCV returns the open-circuit voltage, linear in soc.
func (c Cell) OCV() float64 {
	return VMin + (VMax-VMin)*c.SoC
}
