// Package planning defines the narrow collaborator interfaces a path
// planner would be built against: a read-only view of the schedule and a
// Planner that turns that view into a Trajectory. No concrete Planner
// ships from this repository — path planning is out of
// scope; this package exists so a planner can be developed and tested
// against the schedule core without depending on its concrete types.
package planning

import (
	"context"

	"github.com/LanderU/rmf-core/core/schedule"
	"github.com/LanderU/rmf-core/core/trajectory"
)

// ScheduleViewer is the read-only subset of core/schedule.Database that a
// planner needs: incremental Changes since a watermark, and a point lookup
// of a participant's current Trajectory. *schedule.Database satisfies
// this interface.
type ScheduleViewer interface {
	Changes(q schedule.Query) (schedule.Patch, error)
	Lookup(id schedule.EntryID) (trajectory.Trajectory, bool)
}

// Planner produces a Trajectory given a view of the schedule, ignoring any
// entries in ignore (typically the planning participant's own prior
// itinerary). Implementations are expected to re-plan whenever the
// viewer's Changes reveal a conflicting mutation.
type Planner interface {
	Plan(ctx context.Context, viewer ScheduleViewer, ignore map[schedule.EntryID]bool) (trajectory.Trajectory, error)
}
