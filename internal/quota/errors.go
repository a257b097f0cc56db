package quota

import (
	"fmt"

	"github.com/jonathan/career-advisor/internal/types"
)

// QuotaExceededError indicates the identity has spent its regeneration
// budget. Terminal: not retryable until an external reset.
type QuotaExceededError struct {
	Class types.IdentityClass
	Used  int
	Limit int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for %s identity: %d of %d turns used", e.Class, e.Used, e.Limit)
}
