package schedule

import (
	"encoding/json"
	"time"

	"github.com/LanderU/rmf-core/core/changelog"
	"github.com/LanderU/rmf-core/core/trajectory"
)

// EntryID names a participant-owned Trajectory inside a Database. It is
// assigned on first insertion and stable across mutations until Erase.
type EntryID uint64

// Mode tags the kind of a Change.
type Mode int

const (
	Insert Mode = iota
	Interrupt
	Delay
	Replace
	Erase
	Cull
)

func (m Mode) String() string {
	switch m {
	case Insert:
		return "Insert"
	case Interrupt:
		return "Interrupt"
	case Delay:
		return "Delay"
	case Replace:
		return "Replace"
	case Erase:
		return "Erase"
	case Cull:
		return "Cull"
	default:
		return "Unknown"
	}
}

// InsertPayload is the payload of an Insert Change.
type InsertPayload struct {
	Trajectory *trajectory.Trajectory
}

// InterruptPayload is the payload of an Interrupt Change.
type InterruptPayload struct {
	Insertion *trajectory.Trajectory
	Delay     time.Duration
}

// DelayPayload is the payload of a Delay Change.
type DelayPayload struct {
	From     time.Time
	Duration time.Duration
}

// ReplacePayload is the payload of a Replace Change.
type ReplacePayload struct {
	Trajectory *trajectory.Trajectory
}

// ErasePayload is the (empty) payload of an Erase Change.
type ErasePayload struct{}

// CullPayload is the payload of a Cull Change.
type CullPayload struct {
	Before time.Time
}

// Change is one entry in the Database's append-only log: a tagged
// mutation record plus the version at which it took effect. TargetID
// is unused for Cull, which applies to every entry.
type Change struct {
	Mode     Mode
	Version  uint64
	TargetID EntryID
	MapName  string
	Payload  any
}

// span returns the time range this Change's payload is associated with,
// used for Query time-window filtering. ok is false for a Change with no
// well-defined span (should not occur for a well-formed log).
func (c Change) span() (start, finish time.Time, ok bool) {
	switch p := c.Payload.(type) {
	case InsertPayload:
		return spanOf(p.Trajectory)
	case ReplacePayload:
		return spanOf(p.Trajectory)
	case InterruptPayload:
		return spanOf(p.Insertion)
	case DelayPayload:
		return p.From, p.From.Add(p.Duration), true
	case CullPayload:
		return p.Before, p.Before, true
	default:
		return time.Time{}, time.Time{}, false
	}
}

func spanOf(t *trajectory.Trajectory) (time.Time, time.Time, bool) {
	start, ok := t.StartTime()
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	finish, _ := t.FinishTime()
	return start, finish, true
}

// Patch is a version-bounded, ordered sequence of Changes with a
// latest_version watermark.
type Patch struct {
	Changes       []Change
	LatestVersion uint64
}

type patchWire struct {
	LatestVersion uint64             `json:"latest_version"`
	Changes       []changelog.Record `json:"changes"`
}

// MarshalJSON flattens every Change to its persisted-record encoding so a
// Patch can cross the wire without exposing Trajectory/Profile internals.
func (p Patch) MarshalJSON() ([]byte, error) {
	records := make([]changelog.Record, len(p.Changes))
	for i, c := range p.Changes {
		rec, err := toRecord(c)
		if err != nil {
			return nil, err
		}
		records[i] = rec
	}
	return json.Marshal(patchWire{LatestVersion: p.LatestVersion, Changes: records})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (p *Patch) UnmarshalJSON(data []byte) error {
	var w patchWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	changes := make([]Change, len(w.Changes))
	for i, rec := range w.Changes {
		c, err := fromRecord(rec)
		if err != nil {
			return err
		}
		changes[i] = c
	}
	p.Changes = changes
	p.LatestVersion = w.LatestVersion
	return nil
}
