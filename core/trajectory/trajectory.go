// Package trajectory implements the ordered, time-indexed waypoint sequence:
// strictly increasing times, bounded mutations (insert, erase,
// reorder-by-change_time, suffix-shift-by-adjust_times), and deep-value copy
// semantics.
//
// The backing store is a time-sorted slice of *waypointNode. A slice of
// pointers, rather than a slice of values, is what lets insertion elsewhere
// in the Trajectory leave existing Cursors valid: only the slice of pointers
// is reordered on insert/erase/change_time, never the node each pointer
// addresses.
package trajectory

import (
	"sort"
	"time"

	"github.com/LanderU/rmf-core/core/profile"
)

// Trajectory is an ordered sequence of Waypoints on a named map.
//
// Trajectory does not have Go value-copy semantics: assigning a Trajectory
// (t2 := t1) shares the backing waypoints slice and its nodes. Use Clone to
// obtain an independent deep copy, as required by invariant 5.
type Trajectory struct {
	mapName   string
	waypoints []*waypointNode
	gen       uint64
}

// New returns an empty Trajectory on the given map.
func New(mapName string) *Trajectory {
	return &Trajectory{mapName: mapName}
}

// GetMapName returns the trajectory's map name.
func (t *Trajectory) GetMapName() string { return t.mapName }

// SetMapName sets the trajectory's map name.
func (t *Trajectory) SetMapName(name string) { t.mapName = name }

// Size returns the number of live waypoints.
func (t *Trajectory) Size() int { return len(t.waypoints) }

// StartTime returns the first waypoint's time, absent when empty.
func (t *Trajectory) StartTime() (time.Time, bool) {
	if len(t.waypoints) == 0 {
		return time.Time{}, false
	}
	return t.waypoints[0].time, true
}

// FinishTime returns the last waypoint's time, absent when empty.
func (t *Trajectory) FinishTime() (time.Time, bool) {
	if len(t.waypoints) == 0 {
		return time.Time{}, false
	}
	return t.waypoints[len(t.waypoints)-1].time, true
}

// Duration returns FinishTime - StartTime, or zero when empty.
func (t *Trajectory) Duration() time.Duration {
	start, ok := t.StartTime()
	if !ok {
		return 0
	}
	finish, _ := t.FinishTime()
	return finish.Sub(start)
}

// Begin returns a Cursor to the earliest waypoint, or End() if empty.
func (t *Trajectory) Begin() Cursor {
	if len(t.waypoints) == 0 {
		return t.End()
	}
	return t.cursorAt(0)
}

// End returns the sentinel Cursor one-past-the-last waypoint.
func (t *Trajectory) End() Cursor {
	return Cursor{traj: t, node: nil, gen: t.gen}
}

func (t *Trajectory) cursorAt(i int) Cursor {
	return Cursor{traj: t, node: t.waypoints[i], gen: t.gen}
}

// lowerBound returns the index of the earliest waypoint with time >= q.
func (t *Trajectory) lowerBound(q time.Time) int {
	return sort.Search(len(t.waypoints), func(i int) bool {
		return !t.waypoints[i].time.Before(q)
	})
}

// Insert inserts a waypoint at time. If a waypoint already exists exactly at
// time, no change occurs, inserted is false, and the returned Cursor points
// to the pre-existing waypoint.
func (t *Trajectory) Insert(at time.Time, p *profile.Profile, position, velocity Pose) (Cursor, bool) {
	idx := t.lowerBound(at)
	if idx < len(t.waypoints) && t.waypoints[idx].time.Equal(at) {
		return t.cursorAt(idx), false
	}
	node := &waypointNode{time: at, position: position, velocity: velocity, profile: p}
	t.waypoints = append(t.waypoints, nil)
	copy(t.waypoints[idx+1:], t.waypoints[idx:])
	t.waypoints[idx] = node
	return Cursor{traj: t, node: node, gen: t.gen}, true
}

// Find returns the active waypoint at time: the earliest waypoint whose
// time >= query. Returns End() if query is before the first waypoint
// or after the last.
func (t *Trajectory) Find(at time.Time) Cursor {
	if len(t.waypoints) == 0 || at.Before(t.waypoints[0].time) {
		return t.End()
	}
	return t.LowerBound(at)
}

// LowerBound returns a Cursor to the earliest waypoint whose time >= at,
// or End() if every waypoint precedes at. Unlike Find, a query before the
// first waypoint returns a Cursor to that first waypoint rather than
// End(): Delay and Cull need exactly that lower-bound cursor to shift or
// preserve waypoints lying before the window they are given, where Find's
// out-of-range contract would make them no-ops.
func (t *Trajectory) LowerBound(at time.Time) Cursor {
	idx := t.lowerBound(at)
	if idx >= len(t.waypoints) {
		return t.End()
	}
	return t.cursorAt(idx)
}

func (t *Trajectory) findIndex(node *waypointNode) int {
	if node == nil {
		return len(t.waypoints)
	}
	idx := t.lowerBound(node.time)
	if idx < len(t.waypoints) && t.waypoints[idx] == node {
		return idx
	}
	// Fallback linear scan: should not happen for a live node but keeps
	// Erase/EraseRange total rather than panicking on internal drift.
	for i, w := range t.waypoints {
		if w == node {
			return i
		}
	}
	return len(t.waypoints)
}

// Erase removes one waypoint and returns a Cursor to the waypoint that
// followed it.
func (t *Trajectory) Erase(c Cursor) Cursor {
	if c.traj != t || c.node == nil || c.node.removed {
		return t.End()
	}
	idx := t.findIndex(c.node)
	c.node.removed = true
	t.waypoints = append(t.waypoints[:idx], t.waypoints[idx+1:]...)
	if idx >= len(t.waypoints) {
		return t.End()
	}
	return t.cursorAt(idx)
}

// EraseRange removes the half-open range [first, last). If first == last
// this is a no-op returning first. It returns a
// Cursor to what was last.
func (t *Trajectory) EraseRange(first, last Cursor) Cursor {
	if first.node == last.node {
		return first
	}
	startIdx := t.findIndex(first.node)
	endIdx := t.findIndex(last.node)
	if startIdx >= endIdx {
		return last
	}
	for _, w := range t.waypoints[startIdx:endIdx] {
		w.removed = true
	}
	t.waypoints = append(t.waypoints[:startIdx], t.waypoints[endIdx:]...)
	if startIdx >= len(t.waypoints) {
		return t.End()
	}
	return t.cursorAt(startIdx)
}

// changeTime relocates node to newTime, failing with ErrDuplicateTime if
// another waypoint already sits exactly at newTime.
func (t *Trajectory) changeTime(node *waypointNode, newTime time.Time) (Cursor, error) {
	oldIdx := t.findIndex(node)
	collideIdx := t.lowerBound(newTime)
	if collideIdx < len(t.waypoints) && t.waypoints[collideIdx].time.Equal(newTime) && t.waypoints[collideIdx] != node {
		return Cursor{}, ErrDuplicateTime
	}

	t.waypoints = append(t.waypoints[:oldIdx], t.waypoints[oldIdx+1:]...)
	node.time = newTime
	newIdx := t.lowerBound(newTime)
	t.waypoints = append(t.waypoints, nil)
	copy(t.waypoints[newIdx+1:], t.waypoints[newIdx:])
	t.waypoints[newIdx] = node

	if newIdx != oldIdx {
		t.gen++
	}
	return Cursor{traj: t, node: node, gen: t.gen}, nil
}

// adjustTimes shifts node's time and every subsequent waypoint's time by
// delta, failing with ErrInvariantViolation if that would not leave node
// strictly after its predecessor.
func (t *Trajectory) adjustTimes(node *waypointNode, delta time.Duration) error {
	idx := t.findIndex(node)
	if delta < 0 && idx > 0 {
		pred := t.waypoints[idx-1]
		if !node.time.Add(delta).After(pred.time) {
			return ErrInvariantViolation
		}
	}
	for _, w := range t.waypoints[idx:] {
		w.time = w.time.Add(delta)
	}
	return nil
}

// Snapshot returns an ordered value copy of every live waypoint. It is the
// basis for persistence and for the Database's compacted "everything"
// view — callers get values, never a handle into the Trajectory.
func (t *Trajectory) Snapshot() []Waypoint {
	out := make([]Waypoint, len(t.waypoints))
	for i, w := range t.waypoints {
		out[i] = Waypoint{Time: w.time, Position: w.position, Velocity: w.velocity, Profile: w.profile}
	}
	return out
}

// Clone returns an independent deep copy: mutating the copy never alters
// the source. Profile handles are shared intentionally
// — cloning duplicates the waypoint sequence, not the Profiles it
// references.
func (t *Trajectory) Clone() *Trajectory {
	out := &Trajectory{mapName: t.mapName, waypoints: make([]*waypointNode, len(t.waypoints))}
	for i, w := range t.waypoints {
		clone := *w
		clone.removed = false
		out.waypoints[i] = &clone
	}
	return out
}
