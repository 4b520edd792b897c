package planning

import (
	"context"
	"testing"

	"github.com/LanderU/rmf-core/core/schedule"
	"github.com/LanderU/rmf-core/core/trajectory"
)

// fakeViewer is a minimal ScheduleViewer used to exercise Planner
// implementations in isolation from core/schedule.Database.
type fakeViewer struct {
	patch schedule.Patch
	err   error
	traj  trajectory.Trajectory
	found bool
}

func (f fakeViewer) Changes(schedule.Query) (schedule.Patch, error) { return f.patch, f.err }
func (f fakeViewer) Lookup(schedule.EntryID) (trajectory.Trajectory, bool) {
	return f.traj, f.found
}

// passThroughPlanner always returns whatever Lookup finds for entry 0,
// or an empty Trajectory otherwise. It exists to prove Planner can be
// implemented against ScheduleViewer alone.
type passThroughPlanner struct{}

func (passThroughPlanner) Plan(ctx context.Context, viewer ScheduleViewer, ignore map[schedule.EntryID]bool) (trajectory.Trajectory, error) {
	if ignore[0] {
		return trajectory.Trajectory{}, nil
	}
	traj, ok := viewer.Lookup(0)
	if !ok {
		return trajectory.Trajectory{}, nil
	}
	return traj, nil
}

func TestDatabaseSatisfiesScheduleViewer(t *testing.T) {
	var _ ScheduleViewer = (*schedule.Database)(nil)
}

func TestPassThroughPlanner(t *testing.T) {
	viewer := fakeViewer{found: true}
	p := passThroughPlanner{}
	_, err := p.Plan(context.Background(), viewer, nil)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
}

func TestPassThroughPlannerIgnoresEntry(t *testing.T) {
	viewer := fakeViewer{found: true}
	p := passThroughPlanner{}
	traj, err := p.Plan(context.Background(), viewer, map[schedule.EntryID]bool{0: true})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if traj.Size() != 0 {
		t.Fatalf("expected empty trajectory when entry ignored, got size %d", traj.Size())
	}
}
