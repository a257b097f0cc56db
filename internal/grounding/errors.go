package grounding

import (
	"fmt"
	"strings"
)

// InsufficientGroundingError indicates the assessment dropped below minimum
// grounded coverage after unresolvable references were removed. It is
// retryable: the pipeline may re-invoke generation with reinforced
// constraints before giving up.
type InsufficientGroundingError struct {
	Reason  string
	Dropped []string
}

func (e *InsufficientGroundingError) Error() string {
	if len(e.Dropped) == 0 {
		return fmt.Sprintf("insufficient grounding: %s", e.Reason)
	}
	return fmt.Sprintf("insufficient grounding: %s (dropped: %s)", e.Reason, strings.Join(e.Dropped, ", "))
}
