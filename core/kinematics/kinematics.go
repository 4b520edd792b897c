// Package kinematics defines the Interpolator collaborator: given a
// sequence of poses and kinematic limits, produce the Trajectory a motion
// planner would schedule. No real interpolation algorithm ships here — the
// core consumes this interface, it never implements vehicle motion.
package kinematics

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/LanderU/rmf-core/core/profile"
	"github.com/LanderU/rmf-core/core/trajectory"
)

// ErrInvalidTraits is returned when a Traits value cannot support the
// requested interpolation.
var ErrInvalidTraits = errors.New("kinematics: invalid traits")

// Traits bounds the motion an Interpolator may schedule.
type Traits struct {
	VMax float64
	AMax float64
	WMax float64
}

// Validate reports whether every bound is positive and finite enough to
// support interpolation.
func (t Traits) Validate() error {
	if t.VMax <= 0 || t.AMax <= 0 || t.WMax <= 0 {
		return ErrInvalidTraits
	}
	return nil
}

// Interpolator fills in the Trajectory between a sequence of poses
// respecting Traits. Concrete motion planning is out of scope for this
// repository; this interface is what a planner collaborator
// would be handed.
type Interpolator interface {
	Interpolate(ctx context.Context, mapName string, start time.Time, traits Traits, poses []trajectory.Pose) (*trajectory.Trajectory, error)
}

// ConstantVelocityInterpolator is a reference implementation used by tests:
// it advances from pose to pose at a single constant speed derived from
// Traits.VMax, never exceeding it. The first waypoint has zero velocity;
// every later waypoint, including the last, carries the velocity of the
// segment arriving at it.
type ConstantVelocityInterpolator struct {
	Profile func(pose trajectory.Pose) *profile.Profile
}

// Interpolate produces one waypoint per pose, spaced by Traits.VMax along
// the straight-line distance between consecutive poses.
func (c ConstantVelocityInterpolator) Interpolate(ctx context.Context, mapName string, start time.Time, traits Traits, poses []trajectory.Pose) (*trajectory.Trajectory, error) {
	if err := traits.Validate(); err != nil {
		return nil, err
	}
	if len(poses) == 0 {
		return trajectory.New(mapName), nil
	}

	traj := trajectory.New(mapName)
	t := start
	profileFor := c.Profile
	if profileFor == nil {
		profileFor = func(trajectory.Pose) *profile.Profile { return nil }
	}

	prev := poses[0]
	if _, ok := traj.Insert(t, profileFor(prev), prev, trajectory.Pose{}); !ok {
		return nil, ErrInvalidTraits
	}
	for _, p := range poses[1:] {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		dist := distance(prev, p)
		dt := time.Duration(dist/traits.VMax*float64(time.Second))
		if dt <= 0 {
			dt = time.Nanosecond
		}
		t = t.Add(dt)
		velocity := trajectory.Pose{X: (p.X - prev.X) / dt.Seconds(), Y: (p.Y - prev.Y) / dt.Seconds()}
		if _, ok := traj.Insert(t, profileFor(p), p, velocity); !ok {
			return nil, ErrInvalidTraits
		}
		prev = p
	}
	return traj, nil
}

func distance(a, b trajectory.Pose) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}
