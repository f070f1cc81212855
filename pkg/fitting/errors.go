package fitting

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the engine wraps exactly one of these.
var (
	ErrMalformedInput   = errors.New("malformed input")
	ErrUnknownReference = errors.New("unknown reference")
	ErrDomainRule       = errors.New("domain rule violation")
	ErrConfiguration    = errors.New("configuration error")
)

var (
	ErrInvalidFit      = fmt.Errorf("%w: invalid fit", ErrMalformedInput)
	ErrInvalidModule   = fmt.Errorf("%w: invalid module", ErrUnknownReference)
	ErrUnknownItem     = fmt.Errorf("%w: unknown item", ErrUnknownReference)
	ErrFitNotFound     = fmt.Errorf("%w: fit not found", ErrUnknownReference)
	ErrInvalidCount    = fmt.Errorf("%w: invalid count", ErrDomainRule)
	ErrInvalidHull     = fmt.Errorf("%w: invalid hull", ErrDomainRule)
	ErrCargoOnlyModule = fmt.Errorf("%w: cargo-only item fitted as module", ErrDomainRule)
	ErrInvalidTier     = fmt.Errorf("%w: invalid skill tier", ErrMalformedInput)
)

// IsRejectedInput reports whether err is caused by bad caller input rather than
// configuration or infrastructure failure. Configuration errors often wrap the
// problems found, such as unknown item names; they are never rejected input.
func IsRejectedInput(err error) bool {
	if errors.Is(err, ErrConfiguration) {
		return false
	}
	return errors.Is(err, ErrMalformedInput) ||
		errors.Is(err, ErrUnknownReference) ||
		errors.Is(err, ErrDomainRule)
}
