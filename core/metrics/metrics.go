package metrics

import "time"

// ChangeEvent is a per-Change observation, emitted every time a
// core/schedule.Database commits a mutation.
type ChangeEvent struct {
	Mode     string
	MapName  string
	EntryID  uint64
	Version  uint64
	Time     time.Time
}

// ChangeRecorder records Change events for observability purposes.
type ChangeRecorder interface {
	RecordChange(ev ChangeEvent) error
}

// PatchSyncEvent captures one round trip of the reference MQTT transport:
// a participant queried another participant and either got a Patch back
// or timed out.
type PatchSyncEvent struct {
	ParticipantID string
	RequestID     string
	ChangeCount   int
	Latency       time.Duration
	Success       bool
	Time          time.Time
}

// PatchSyncRecorder records PatchSync events.
type PatchSyncRecorder interface {
	RecordPatchSync(ev PatchSyncEvent) error
}

// DatabaseSizeEvent is a periodic snapshot of Database size, useful for
// tracking Cull effectiveness over time.
type DatabaseSizeEvent struct {
	EntryCount    int
	LatestVersion uint64
	Time          time.Time
}

// DatabaseSizeRecorder records DatabaseSize events.
type DatabaseSizeRecorder interface {
	RecordDatabaseSize(ev DatabaseSizeEvent) error
}

// MetricsSink is the minimum surface every sink must implement. A sink may
// additionally implement PatchSyncRecorder and/or DatabaseSizeRecorder;
// callers probe for those with a type assertion, mirroring how
// MultiSink forwards to whichever of its children support a given event.
type MetricsSink interface {
	ChangeRecorder
}

// NopSink discards every event. It is the default when no sink is configured.
type NopSink struct{}

func (NopSink) RecordChange(ChangeEvent) error          { return nil }
func (NopSink) RecordPatchSync(PatchSyncEvent) error    { return nil }
func (NopSink) RecordDatabaseSize(DatabaseSizeEvent) error { return nil }
