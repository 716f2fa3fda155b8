package sim

import "fmt"

// InvalidCaseError reports a case identifier outside 1..4. It indicates a
// configuration mistake, not a transient condition; callers should not retry.
type InvalidCaseError struct {
	Case int
}

func (e *InvalidCaseError) Error() string {
	return fmt.Sprintf("invalid simulation case %d: must be between 1 and 4", e.Case)
}
