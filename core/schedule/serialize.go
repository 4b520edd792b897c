package schedule

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/LanderU/rmf-core/core/changelog"
	"github.com/LanderU/rmf-core/core/geometry"
	"github.com/LanderU/rmf-core/core/profile"
	"github.com/LanderU/rmf-core/core/trajectory"
)

// wireWaypoint is the flat, JSON-safe encoding of one trajectory.Waypoint.
// Profile sharing across waypoints is a live-process detail only: a
// replayed trajectory gets one freshly-constructed Profile per waypoint,
// so waypoints that shared a Profile before encoding no longer share it
// after decoding, and mutating one of them is not seen by the others. A
// waypoint with a nil Profile is encoded with an empty ShapeKind and
// decodes back to a nil Profile.
type wireWaypoint struct {
	TimeUnixNano int64            `json:"time_unix_nano"`
	Position     trajectory.Pose  `json:"position"`
	Velocity     trajectory.Pose  `json:"velocity"`
	Movement     profile.Kind     `json:"movement"`
	QueueID      string           `json:"queue_id,omitempty"`
	HasQueue     bool             `json:"has_queue,omitempty"`
	ShapeKind    string           `json:"shape_kind"`
	ShapeData    json.RawMessage  `json:"shape_data"`
}

type wireTrajectory struct {
	MapName   string         `json:"map_name"`
	Waypoints []wireWaypoint `json:"waypoints"`
}

// wirePayload is a union of every Change payload's fields. Only the
// fields relevant to a given Mode are populated.
type wirePayload struct {
	Trajectory    *wireTrajectory `json:"trajectory,omitempty"`
	Insertion     *wireTrajectory `json:"insertion,omitempty"`
	DelayNanos    int64           `json:"delay_nanos,omitempty"`
	FromUnixNano  int64           `json:"from_unix_nano,omitempty"`
	DurationNanos int64           `json:"duration_nanos,omitempty"`
	BeforeUnixNano int64          `json:"before_unix_nano,omitempty"`
}

func encodeTrajectory(t *trajectory.Trajectory) (*wireTrajectory, error) {
	waypoints := t.Snapshot()
	out := &wireTrajectory{MapName: t.GetMapName(), Waypoints: make([]wireWaypoint, len(waypoints))}
	for i, wp := range waypoints {
		ww := wireWaypoint{
			TimeUnixNano: wp.Time.UnixNano(),
			Position:     wp.Position,
			Velocity:     wp.Velocity,
		}
		if wp.Profile != nil {
			kind, data, err := geometry.Encode(wp.Profile.GetShape())
			if err != nil {
				return nil, fmt.Errorf("schedule: encode waypoint %d shape: %w", i, err)
			}
			ww.QueueID, ww.HasQueue = wp.Profile.QueueInfo()
			ww.Movement = wp.Profile.GetMovement()
			ww.ShapeKind = kind
			ww.ShapeData = data
		}
		out.Waypoints[i] = ww
	}
	return out, nil
}

func decodeTrajectory(wt *wireTrajectory) (*trajectory.Trajectory, error) {
	traj := trajectory.New(wt.MapName)
	for i, ww := range wt.Waypoints {
		at := time.Unix(0, ww.TimeUnixNano).UTC()
		if ww.ShapeKind == "" {
			if _, ok := traj.Insert(at, nil, ww.Position, ww.Velocity); !ok {
				return nil, fmt.Errorf("schedule: duplicate waypoint time %v while replaying", at)
			}
			continue
		}
		shape, err := geometry.Decode(ww.ShapeKind, ww.ShapeData)
		if err != nil {
			return nil, fmt.Errorf("schedule: decode waypoint %d shape: %w", i, err)
		}
		var p *profile.Profile
		switch ww.Movement {
		case profile.Strict:
			p = profile.MakeStrict(shape)
		case profile.Autonomous:
			p = profile.MakeAutonomous(shape)
		case profile.Queued:
			p = profile.MakeQueued(shape, ww.QueueID)
		default:
			return nil, fmt.Errorf("schedule: unknown movement kind %v", ww.Movement)
		}
		if _, ok := traj.Insert(at, p, ww.Position, ww.Velocity); !ok {
			return nil, fmt.Errorf("schedule: duplicate waypoint time %v while replaying", at)
		}
	}
	return traj, nil
}

// toRecord flattens a Change into a changelog.Record ready for
// persistence.
func toRecord(c Change) (changelog.Record, error) {
	var wp wirePayload
	switch p := c.Payload.(type) {
	case InsertPayload:
		wt, err := encodeTrajectory(p.Trajectory)
		if err != nil {
			return changelog.Record{}, err
		}
		wp.Trajectory = wt
	case ReplacePayload:
		wt, err := encodeTrajectory(p.Trajectory)
		if err != nil {
			return changelog.Record{}, err
		}
		wp.Trajectory = wt
	case InterruptPayload:
		wt, err := encodeTrajectory(p.Insertion)
		if err != nil {
			return changelog.Record{}, err
		}
		wp.Insertion = wt
		wp.DelayNanos = int64(p.Delay)
	case DelayPayload:
		wp.FromUnixNano = p.From.UnixNano()
		wp.DurationNanos = int64(p.Duration)
	case CullPayload:
		wp.BeforeUnixNano = p.Before.UnixNano()
	case ErasePayload:
		// no fields
	default:
		return changelog.Record{}, fmt.Errorf("schedule: unknown payload type %T", c.Payload)
	}

	data, err := json.Marshal(wp)
	if err != nil {
		return changelog.Record{}, err
	}
	return changelog.Record{
		Version:   c.Version,
		Timestamp: time.Now(),
		Mode:      c.Mode.String(),
		TargetID:  uint64(c.TargetID),
		MapName:   c.MapName,
		Payload:   data,
	}, nil
}

// fromRecord reconstructs a Change from a persisted changelog.Record.
func fromRecord(rec changelog.Record) (Change, error) {
	var wp wirePayload
	if len(rec.Payload) > 0 {
		if err := json.Unmarshal(rec.Payload, &wp); err != nil {
			return Change{}, err
		}
	}

	mode, err := modeFromString(rec.Mode)
	if err != nil {
		return Change{}, err
	}

	change := Change{Mode: mode, Version: rec.Version, TargetID: EntryID(rec.TargetID), MapName: rec.MapName}

	switch mode {
	case Insert:
		traj, err := decodeTrajectory(wp.Trajectory)
		if err != nil {
			return Change{}, err
		}
		change.Payload = InsertPayload{Trajectory: traj}
	case Replace:
		traj, err := decodeTrajectory(wp.Trajectory)
		if err != nil {
			return Change{}, err
		}
		change.Payload = ReplacePayload{Trajectory: traj}
	case Interrupt:
		traj, err := decodeTrajectory(wp.Insertion)
		if err != nil {
			return Change{}, err
		}
		change.Payload = InterruptPayload{Insertion: traj, Delay: time.Duration(wp.DelayNanos)}
	case Delay:
		change.Payload = DelayPayload{From: time.Unix(0, wp.FromUnixNano).UTC(), Duration: time.Duration(wp.DurationNanos)}
	case Cull:
		change.Payload = CullPayload{Before: time.Unix(0, wp.BeforeUnixNano).UTC()}
	case Erase:
		change.Payload = ErasePayload{}
	}
	return change, nil
}

func modeFromString(s string) (Mode, error) {
	switch s {
	case "Insert":
		return Insert, nil
	case "Interrupt":
		return Interrupt, nil
	case "Delay":
		return Delay, nil
	case "Replace":
		return Replace, nil
	case "Erase":
		return Erase, nil
	case "Cull":
		return Cull, nil
	default:
		return 0, fmt.Errorf("schedule: unknown change mode %q", s)
	}
}
