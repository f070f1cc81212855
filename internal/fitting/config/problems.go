package config

import (
	"errors"
	"fmt"

	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// Problems collects configuration errors so that all of them can be reported
// at once instead of stopping at the first.
type Problems struct {
	errs []error
}

// Add records err if it is non-nil.
func (p *Problems) Add(err error) {
	if err != nil {
		p.errs = append(p.errs, err)
	}
}

// Addf records a formatted problem.
func (p *Problems) Addf(format string, args ...any) {
	p.errs = append(p.errs, fmt.Errorf(format, args...))
}

// Len returns the number of problems recorded.
func (p *Problems) Len() int {
	return len(p.errs)
}

// Err returns nil if no problems were recorded, otherwise a single error
// wrapping ErrConfiguration and every recorded problem.
func (p *Problems) Err() error {
	if len(p.errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d problem(s):\n%w", fitting.ErrConfiguration, len(p.errs), errors.Join(p.errs...))
}
