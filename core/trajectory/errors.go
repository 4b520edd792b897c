package trajectory

import "errors"

// ErrDuplicateTime is returned when an operation would create two
// waypoints sharing a time.
var ErrDuplicateTime = errors.New("trajectory: duplicate waypoint time")

// ErrInvariantViolation is returned when an operation would break the
// strict time ordering invariant.
var ErrInvariantViolation = errors.New("trajectory: strict time ordering violated")
