package investment

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no investment exists for the given id.
	ErrNotFound = errors.New("investment not found")

	// ErrAlreadyPaidOut is returned when a payout is attempted on an
	// investment that has already been paid out. The first payout wins;
	// repeating it is rejected, never silently replayed.
	ErrAlreadyPaidOut = errors.New("investment already paid out")

	// ErrNotYetMatured is returned when a payout is attempted before the
	// investment's maturity date has passed.
	ErrNotYetMatured = errors.New("investment not yet matured")

	// ErrInvalidTransition is the sentinel all InvalidTransitionError
	// values unwrap to.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// InvalidTransitionError reports a lifecycle transition that is not allowed
// from the investment's current status. It carries both ends of the
// attempted transition so callers can surface a meaningful message.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

// Unwrap makes errors.Is(err, ErrInvalidTransition) hold.
func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
