package schedule

import "errors"

// ErrUnknownID is returned when a mutation targets an entry id the
// Database does not hold.
var ErrUnknownID = errors.New("schedule: unknown entry id")

// ErrInvariantViolation is returned when a mutation would break the
// Trajectory strict-time-ordering invariant — an Interrupt splice that
// overlaps, or a Delay/backward shift that collides with a neighbour
//. The Database is left unchanged on failure.
var ErrInvariantViolation = errors.New("schedule: mutation would violate trajectory ordering")

// ErrEmptyInsertion is returned by Interrupt when the insertion
// trajectory carries no waypoints to splice.
var ErrEmptyInsertion = errors.New("schedule: insertion trajectory is empty")
