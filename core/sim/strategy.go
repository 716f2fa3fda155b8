package sim

import "fmt"

// Strategy selects how the pack is charged and balanced. The numeric values
// match the case identifiers exposed at the driver boundary.
type Strategy int

const (
	// StrategyPassive charges until overvoltage, then bleeds high cells.
	StrategyPassive Strategy = iota + 1
	// StrategyActive charges until overvoltage, then shuttles charge from the
	// highest cell to the lowest.
	StrategyActive
	// StrategyEqualize runs active transfers concurrently with charging and
	// never enters a separate balancing phase.
	StrategyEqualize
	// StrategyRegulated tapers the charge current near the protection
	// threshold, approximating CC/CV charging.
	StrategyRegulated
)

// StrategyFromCase maps a driver-facing case identifier to a Strategy.
func StrategyFromCase(id int) (Strategy, error) {
	switch id {
	case 1:
		return StrategyPassive, nil
	case 2:
		return StrategyActive, nil
	case 3:
		return StrategyEqualize, nil
	case 4:
		return StrategyRegulated, nil
	default:
		return 0, &InvalidCaseError{Case: id}
	}
}

// Case returns the driver-facing case identifier.
func (s Strategy) Case() int { return int(s) }

func (s Strategy) String() string {
	switch s {
	case StrategyPassive:
		return "passive"
	case StrategyActive:
		return "active"
	case StrategyEqualize:
		return "equalize"
	case StrategyRegulated:
		return "regulated"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}
