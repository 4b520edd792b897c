package schedule

import "github.com/LanderU/rmf-core/core/trajectory"

// entry is a participant-owned Trajectory held by the Database, indexed
// by id. lastVersion is the version of the most recent Change that
// touched this entry, used to synthesize the compacted view Changes
// returns for a watermark-less Query.
type entry struct {
	id          EntryID
	traj        *trajectory.Trajectory
	lastVersion uint64
}
