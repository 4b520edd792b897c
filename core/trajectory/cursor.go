package trajectory

import (
	"time"

	"github.com/LanderU/rmf-core/core/profile"
)

// Cursor addresses one waypoint inside a specific Trajectory. It remains
// valid across insertions elsewhere in the same Trajectory and across
// erasure of other waypoints. It is invalidated by erasure of its own
// waypoint, and — per the conservative reading of open question (i) —
// by any mutation that reorders the Trajectory (Cursor.ChangeTime causing
// a reorder): every outstanding Cursor for that Trajectory is invalidated
// together, not just the one that moved.
type Cursor struct {
	traj *Trajectory
	node *waypointNode
	gen  uint64
}

// Valid reports whether the Cursor still addresses a live waypoint.
func (c Cursor) Valid() bool {
	return c.traj != nil && c.node != nil && !c.node.removed && c.gen == c.traj.gen
}

// IsEnd reports whether this Cursor is the Trajectory's End sentinel.
func (c Cursor) IsEnd() bool {
	return c.node == nil
}

// Time returns the waypoint's time. ok is false if the Cursor is invalid or
// is End().
func (c Cursor) Time() (t time.Time, ok bool) {
	if !c.liveNode() {
		return time.Time{}, false
	}
	return c.node.time, true
}

// Position returns the waypoint's position.
func (c Cursor) Position() (Pose, bool) {
	if !c.liveNode() {
		return Pose{}, false
	}
	return c.node.position, true
}

// SetPosition updates the waypoint's position.
func (c Cursor) SetPosition(p Pose) bool {
	if !c.liveNode() {
		return false
	}
	c.node.position = p
	return true
}

// Velocity returns the waypoint's velocity.
func (c Cursor) Velocity() (Pose, bool) {
	if !c.liveNode() {
		return Pose{}, false
	}
	return c.node.velocity, true
}

// SetVelocity updates the waypoint's velocity.
func (c Cursor) SetVelocity(v Pose) bool {
	if !c.liveNode() {
		return false
	}
	c.node.velocity = v
	return true
}

// GetProfile returns the waypoint's Profile handle.
func (c Cursor) GetProfile() (*profile.Profile, bool) {
	if !c.liveNode() {
		return nil, false
	}
	return c.node.profile, true
}

// SetProfile updates the waypoint's Profile handle.
func (c Cursor) SetProfile(p *profile.Profile) bool {
	if !c.liveNode() {
		return false
	}
	c.node.profile = p
	return true
}

// Waypoint returns a value snapshot of the addressed waypoint.
func (c Cursor) Waypoint() (Waypoint, bool) {
	if !c.liveNode() {
		return Waypoint{}, false
	}
	return Waypoint{
		Time:     c.node.time,
		Position: c.node.position,
		Velocity: c.node.velocity,
		Profile:  c.node.profile,
	}, true
}

func (c Cursor) liveNode() bool {
	return c.Valid() && c.node != nil
}

// ChangeTime changes only this waypoint's time. It fails with
// ErrDuplicateTime if newTime coincides exactly with another waypoint's
// time. On success every outstanding Cursor for the owning Trajectory,
// including this one, is invalidated if the change reordered the sequence;
// the returned Cursor addresses the moved waypoint and is valid.
func (c Cursor) ChangeTime(newTime time.Time) (Cursor, error) {
	if !c.liveNode() {
		return Cursor{}, ErrInvariantViolation
	}
	return c.traj.changeTime(c.node, newTime)
}

// AdjustTimes shifts this waypoint's time and every subsequent waypoint's
// time by delta. It never reorders the sequence. It fails with
// ErrInvariantViolation if delta < 0 and the shifted time would not be
// strictly after this waypoint's predecessor.
func (c Cursor) AdjustTimes(delta time.Duration) error {
	if !c.liveNode() {
		return ErrInvariantViolation
	}
	return c.traj.adjustTimes(c.node, delta)
}
