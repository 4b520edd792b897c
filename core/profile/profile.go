// Package profile implements the per-waypoint Profile descriptor:
// an occupied shape plus a movement/autonomy tag. Profiles are shared by
// value identity — multiple Waypoints may hold the same *Profile, and
// mutating one is observed by every holder. This is intentional.
package profile

import "github.com/LanderU/rmf-core/core/geometry"

// Kind is the movement/autonomy tag of a Profile.
type Kind int

const (
	// Strict means the vehicle follows the trajectory exactly.
	Strict Kind = iota
	// Autonomous means the vehicle navigates freely within the occupied
	// shape; collisions against it are resolved by shape+kinematics only.
	Autonomous
	// Queued means the vehicle waits in a named queue.
	Queued
)

// String renders the Kind for logging.
func (k Kind) String() string {
	switch k {
	case Strict:
		return "strict"
	case Autonomous:
		return "autonomous"
	case Queued:
		return "queued"
	default:
		return "unknown"
	}
}

// Profile is the shared, mutable-by-convention {shape, movement} pair
// attached to a Waypoint. Zero value is not valid; construct via one of the
// MakeXxx constructors.
type Profile struct {
	shape    geometry.Shape
	movement Kind
	queueID  *string
}

// MakeStrict constructs a Profile with Strict movement.
func MakeStrict(shape geometry.Shape) *Profile {
	return &Profile{shape: shape, movement: Strict}
}

// MakeAutonomous constructs a Profile with Autonomous movement.
func MakeAutonomous(shape geometry.Shape) *Profile {
	return &Profile{shape: shape, movement: Autonomous}
}

// MakeQueued constructs a Profile with Queued movement and the given queue tag.
func MakeQueued(shape geometry.Shape, queueID string) *Profile {
	id := queueID
	return &Profile{shape: shape, movement: Queued, queueID: &id}
}

// GetShape returns the current shape handle.
func (p *Profile) GetShape() geometry.Shape { return p.shape }

// SetShape swaps the shape handle.
func (p *Profile) SetShape(shape geometry.Shape) { p.shape = shape }

// GetMovement returns the movement tag.
func (p *Profile) GetMovement() Kind { return p.movement }

// SetToStrict switches movement to Strict, dropping any queue tag.
func (p *Profile) SetToStrict() {
	p.movement = Strict
	p.queueID = nil
}

// SetToAutonomous switches movement to Autonomous, dropping any queue tag.
func (p *Profile) SetToAutonomous() {
	p.movement = Autonomous
	p.queueID = nil
}

// SetToQueued switches movement to Queued, requiring a queue id.
func (p *Profile) SetToQueued(queueID string) {
	p.movement = Queued
	id := queueID
	p.queueID = &id
}

// QueueInfo returns the queue id and whether one is present. It is only
// present when GetMovement() == Queued. An unqueued Profile reports this as
// an absent result, not a raised error.
//
// The returned string is a snapshot: it is not updated by any subsequent
// mutation of this Profile.
func (p *Profile) QueueInfo() (string, bool) {
	if p.movement != Queued || p.queueID == nil {
		return "", false
	}
	return *p.queueID, true
}
