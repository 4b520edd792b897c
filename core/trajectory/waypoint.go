package trajectory

import (
	"time"

	"github.com/LanderU/rmf-core/core/profile"
)

// Pose is a planar pose or planar velocity: (x, y, theta) about the vertical
// axis, or their time derivatives when used as a velocity.
type Pose struct {
	X, Y, Theta float64
}

// Waypoint is a time-indexed kinematic state with a Profile. Waypoint
// values are returned by the accessor methods on Cursor as snapshots; the
// live state lives in the node the Cursor addresses.
type Waypoint struct {
	Time     time.Time
	Position Pose
	Velocity Pose
	Profile  *profile.Profile
}

// waypointNode is the mutable storage backing one live waypoint inside a
// Trajectory. Its address is stable across insertions and erasures of other
// waypoints — only the owning Trajectory's index slice is ever reordered,
// never the node itself. This is what lets Cursor offer "insert does not
// invalidate other iterators" despite a slice-backed implementation.
type waypointNode struct {
	time     time.Time
	position Pose
	velocity Pose
	profile  *profile.Profile
	removed  bool
}
