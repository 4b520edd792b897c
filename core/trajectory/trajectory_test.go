package trajectory

import (
	"testing"
	"time"

	"github.com/LanderU/rmf-core/core/geometry"
	"github.com/LanderU/rmf-core/core/profile"
)

func at(seconds int) time.Time {
	return time.Date(2026, 8, 6, 0, 0, seconds, 0, time.UTC)
}

func strictProfile() *profile.Profile {
	return profile.MakeStrict(geometry.NewUnitBox())
}

// S1: insert two waypoints 10s apart; size, start, finish, duration, find.
func TestInsertTwoWaypoints(t *testing.T) {
	traj := New("level1")
	p := strictProfile()

	if _, ok := traj.Insert(at(0), p, Pose{}, Pose{}); !ok {
		t.Fatalf("expected first insert to succeed")
	}
	if _, ok := traj.Insert(at(10), p, Pose{X: 1}, Pose{}); !ok {
		t.Fatalf("expected second insert to succeed")
	}

	if got := traj.Size(); got != 2 {
		t.Fatalf("Size() = %d, want 2", got)
	}
	start, ok := traj.StartTime()
	if !ok || !start.Equal(at(0)) {
		t.Fatalf("StartTime() = %v, %v", start, ok)
	}
	finish, ok := traj.FinishTime()
	if !ok || !finish.Equal(at(10)) {
		t.Fatalf("FinishTime() = %v, %v", finish, ok)
	}
	if got := traj.Duration(); got != 10*time.Second {
		t.Fatalf("Duration() = %v, want 10s", got)
	}

	c := traj.Find(at(5))
	wp, ok := c.Waypoint()
	if !ok || !wp.Time.Equal(at(10)) {
		t.Fatalf("Find(5s) = %v, want waypoint at 10s", wp.Time)
	}
}

func TestEmptyTrajectoryHasNoBounds(t *testing.T) {
	traj := New("level1")
	if _, ok := traj.StartTime(); ok {
		t.Fatalf("expected absent StartTime on empty trajectory")
	}
	if _, ok := traj.FinishTime(); ok {
		t.Fatalf("expected absent FinishTime on empty trajectory")
	}
	if got := traj.Duration(); got != 0 {
		t.Fatalf("Duration() = %v, want 0", got)
	}
	if !traj.Begin().IsEnd() {
		t.Fatalf("expected Begin() == End() on empty trajectory")
	}
}

func TestInsertDuplicateTimeIsNoOp(t *testing.T) {
	traj := New("level1")
	p := strictProfile()
	traj.Insert(at(0), p, Pose{}, Pose{})
	c, inserted := traj.Insert(at(0), p, Pose{X: 99}, Pose{})
	if inserted {
		t.Fatalf("expected duplicate-time insert to report inserted=false")
	}
	wp, _ := c.Waypoint()
	if wp.Position.X == 99 {
		t.Fatalf("duplicate insert must not overwrite the existing waypoint")
	}
	if traj.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", traj.Size())
	}
}

func TestFindBeforeFirstAndAfterLastReturnsEnd(t *testing.T) {
	traj := New("level1")
	p := strictProfile()
	traj.Insert(at(10), p, Pose{}, Pose{})
	traj.Insert(at(20), p, Pose{}, Pose{})

	if !traj.Find(at(5)).IsEnd() {
		t.Fatalf("expected End() for a query before the first waypoint")
	}
	if !traj.Find(at(21)).IsEnd() {
		t.Fatalf("expected End() for a query after the last waypoint")
	}
}

func TestLowerBoundIncludesBeforeFirst(t *testing.T) {
	traj := New("level1")
	p := strictProfile()
	traj.Insert(at(10), p, Pose{}, Pose{})
	traj.Insert(at(20), p, Pose{}, Pose{})

	c := traj.LowerBound(at(5))
	if c.IsEnd() {
		t.Fatalf("expected a cursor to the first waypoint for a query before it")
	}
	wp, _ := c.Waypoint()
	if !wp.Time.Equal(at(10)) {
		t.Fatalf("LowerBound(5) = %v, want first waypoint at 10", wp.Time)
	}

	if !traj.LowerBound(at(21)).IsEnd() {
		t.Fatalf("expected End() for a query after the last waypoint")
	}
}

func TestErase(t *testing.T) {
	traj := New("level1")
	p := strictProfile()
	traj.Insert(at(0), p, Pose{}, Pose{})
	second, _ := traj.Insert(at(10), p, Pose{}, Pose{})
	traj.Insert(at(20), p, Pose{}, Pose{})

	next := traj.Erase(traj.Find(at(10)))
	wp, ok := next.Waypoint()
	if !ok || !wp.Time.Equal(at(20)) {
		t.Fatalf("expected Erase to return a cursor to the following waypoint at 20s")
	}
	if second.Valid() {
		t.Fatalf("expected the erased waypoint's own cursor to be invalidated")
	}
	if traj.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", traj.Size())
	}
}

func TestEraseRangeNoOpWhenBoundsEqual(t *testing.T) {
	traj := New("level1")
	p := strictProfile()
	traj.Insert(at(0), p, Pose{}, Pose{})
	c := traj.Find(at(0))
	if got := traj.EraseRange(c, c); got.node != c.node {
		t.Fatalf("EraseRange(first, first) must be a no-op returning first")
	}
	if traj.Size() != 1 {
		t.Fatalf("Size() = %d, want 1 after no-op EraseRange", traj.Size())
	}
}

func TestEraseRangeRemovesHalfOpenSpan(t *testing.T) {
	traj := New("level1")
	p := strictProfile()
	traj.Insert(at(0), p, Pose{}, Pose{})
	traj.Insert(at(10), p, Pose{}, Pose{})
	traj.Insert(at(20), p, Pose{}, Pose{})
	traj.Insert(at(30), p, Pose{}, Pose{})

	first := traj.Find(at(10))
	last := traj.Find(at(30))
	result := traj.EraseRange(first, last)

	if traj.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", traj.Size())
	}
	wp, ok := result.Waypoint()
	if !ok || !wp.Time.Equal(at(30)) {
		t.Fatalf("expected EraseRange to return a cursor to 30s, got %v", wp.Time)
	}
}

// S2: three waypoints, reorder the middle one via ChangeTime past the last.
func TestChangeTimeReorderInvalidatesOutstandingCursors(t *testing.T) {
	traj := New("level1")
	p := strictProfile()
	traj.Insert(at(0), p, Pose{}, Pose{})
	middle, _ := traj.Insert(at(10), p, Pose{}, Pose{})
	last := traj.Find(at(20))
	traj.Insert(at(20), p, Pose{}, Pose{})
	last = traj.Find(at(20))

	moved, err := middle.ChangeTime(at(30))
	if err != nil {
		t.Fatalf("ChangeTime returned error: %v", err)
	}
	if !moved.Valid() {
		t.Fatalf("expected the returned cursor from ChangeTime to be valid")
	}
	if last.Valid() {
		t.Fatalf("expected reorder to invalidate outstanding cursors on the same trajectory")
	}

	wp, _ := traj.Find(at(30)).Waypoint()
	if !wp.Time.Equal(at(30)) {
		t.Fatalf("expected waypoint relocated to 30s")
	}
	if traj.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", traj.Size())
	}
}

func TestChangeTimeToExistingTimeFails(t *testing.T) {
	traj := New("level1")
	p := strictProfile()
	traj.Insert(at(0), p, Pose{}, Pose{})
	second, _ := traj.Insert(at(10), p, Pose{}, Pose{})

	if _, err := second.ChangeTime(at(0)); err != ErrDuplicateTime {
		t.Fatalf("ChangeTime to an occupied time = %v, want ErrDuplicateTime", err)
	}
}

func TestChangeTimeWithoutReorderKeepsCursorsValid(t *testing.T) {
	traj := New("level1")
	p := strictProfile()
	a, _ := traj.Insert(at(0), p, Pose{}, Pose{})
	b, _ := traj.Insert(at(10), p, Pose{}, Pose{})

	moved, err := b.ChangeTime(at(9))
	if err != nil {
		t.Fatalf("ChangeTime returned error: %v", err)
	}
	if !moved.Valid() || !a.Valid() {
		t.Fatalf("expected cursors to remain valid when relative order is unchanged")
	}
}

// S3: AdjustTimes backward-limit boundary: succeeds right up to the
// predecessor's time, fails the instant it would reach or cross it.
func TestAdjustTimesBackwardBoundary(t *testing.T) {
	traj := New("level1")
	p := strictProfile()
	traj.Insert(at(0), p, Pose{}, Pose{})
	c, _ := traj.Insert(at(10), p, Pose{}, Pose{})

	if err := c.AdjustTimes(-9 * time.Second); err != nil {
		t.Fatalf("AdjustTimes(-9s) unexpected error: %v", err)
	}
	wp, _ := c.Waypoint()
	if !wp.Time.Equal(at(1)) {
		t.Fatalf("expected waypoint shifted to 1s, got %v", wp.Time)
	}

	if err := c.AdjustTimes(-1 * time.Second); err != ErrInvariantViolation {
		t.Fatalf("AdjustTimes crossing predecessor = %v, want ErrInvariantViolation", err)
	}
}

func TestAdjustTimesShiftsSuffixTogether(t *testing.T) {
	traj := New("level1")
	p := strictProfile()
	a, _ := traj.Insert(at(0), p, Pose{}, Pose{})
	traj.Insert(at(10), p, Pose{}, Pose{})
	traj.Insert(at(20), p, Pose{}, Pose{})

	if err := a.AdjustTimes(5 * time.Second); err != nil {
		t.Fatalf("AdjustTimes returned error: %v", err)
	}

	wantTimes := []time.Time{at(5), at(15), at(25)}
	for i, want := range wantTimes {
		c := traj.Find(want)
		wp, ok := c.Waypoint()
		if !ok || !wp.Time.Equal(want) {
			t.Fatalf("waypoint %d: expected time %v, got %v (ok=%v)", i, want, wp.Time, ok)
		}
	}
}

func TestAdjustTimesNeverReorders(t *testing.T) {
	traj := New("level1")
	p := strictProfile()
	a, _ := traj.Insert(at(0), p, Pose{}, Pose{})
	b := traj.Find(at(0))

	if err := a.AdjustTimes(3 * time.Second); err != nil {
		t.Fatalf("AdjustTimes returned error: %v", err)
	}
	if !b.Valid() {
		t.Fatalf("AdjustTimes must never invalidate outstanding cursors")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	traj := New("level1")
	p := strictProfile()
	traj.Insert(at(0), p, Pose{X: 1}, Pose{})
	traj.Insert(at(10), p, Pose{}, Pose{})

	clone := traj.Clone()
	clone.Insert(at(20), p, Pose{}, Pose{})
	c := clone.Find(at(0))
	c.SetPosition(Pose{X: 42})

	if traj.Size() != 2 {
		t.Fatalf("mutating the clone must not affect the source: Size() = %d, want 2", traj.Size())
	}
	orig, _ := traj.Find(at(0)).Waypoint()
	if orig.Position.X != 1 {
		t.Fatalf("mutating the clone's waypoint must not affect the source's waypoint")
	}
}

func TestCloneSharesProfileHandles(t *testing.T) {
	traj := New("level1")
	p := strictProfile()
	traj.Insert(at(0), p, Pose{}, Pose{})

	clone := traj.Clone()
	p.SetToQueued("dock-1")

	wp, _ := clone.Find(at(0)).Waypoint()
	if wp.Profile.GetMovement() != profile.Queued {
		t.Fatalf("expected cloned trajectory to still share the Profile pointer with the source")
	}
}
