package schedule

import (
	"errors"
	"fmt"
)

// Closed set of rejection reasons. Callers branch with errors.Is and decide
// presentation themselves.
var (
	ErrInsufficientDoses    = errors.New("not enough available doses")
	ErrNoCaregiverAvailable = errors.New("no caregiver is available")
	ErrDuplicateSlot        = errors.New("availability already uploaded for that date")
	ErrInvalidAmount        = errors.New("dose count must be positive")
	ErrUsernameTaken        = errors.New("username taken")
	ErrInvalidCredentials   = errors.New("invalid username or password")

	// ErrStorage marks a backing-store failure. The operation aborted
	// cleanly; the service stays usable.
	ErrStorage = errors.New("storage failure")
)

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}
