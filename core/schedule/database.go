// Package schedule implements the versioned, queryable store of
// participant-owned trajectories: the Database, its Query grammar, and
// the Patch/Change log that lets observers catch up incrementally.
package schedule

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/LanderU/rmf-core/core/changelog"
	"github.com/LanderU/rmf-core/core/trajectory"
	"github.com/LanderU/rmf-core/internal/eventbus"
)

// Database is a versioned collection of participant-owned Trajectories.
// It is safe for concurrent use: readers (Changes) may run in parallel
// with each other; writers are serialised by a single RWMutex, one per
// aggregate.
type Database struct {
	mu      sync.RWMutex
	version uint64
	nextID  EntryID
	entries map[EntryID]*entry
	order   []EntryID
	log     []Change

	bus   *eventbus.TypedBus[Change]
	store changelog.Store
}

// New returns an empty Database. store is optional; when non-nil, every
// accepted mutation's Change is appended to it.
func New(store changelog.Store) *Database {
	return &Database{
		entries: make(map[EntryID]*entry),
		bus:     eventbus.NewTyped[Change](),
		store:   store,
	}
}

// Subscribe registers a new observer and returns a channel of every
// Change accepted from this point on, plus an unsubscribe function.
func (db *Database) Subscribe() (<-chan Change, func()) {
	ch := db.bus.Subscribe()
	return ch, func() { db.bus.Unsubscribe(ch) }
}

// Insert assigns a fresh id to traj and records an Insert change.
func (db *Database) Insert(traj *trajectory.Trajectory) (uint64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	id := db.nextID
	db.nextID++
	owned := traj.Clone()

	version := db.commitLocked(Change{
		Mode:     Insert,
		TargetID: id,
		MapName:  owned.GetMapName(),
		Payload:  InsertPayload{Trajectory: owned},
	})

	db.entries[id] = &entry{id: id, traj: owned, lastVersion: version}
	db.order = append(db.order, id)
	return version, nil
}

// Interrupt splices insertion into entry id's timeline starting at
// insertion's first waypoint time, pushing the remainder of id's
// original waypoints forward by delay.
func (db *Database) Interrupt(id EntryID, insertion *trajectory.Trajectory, delay time.Duration) (uint64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	e, ok := db.entries[id]
	if !ok {
		return 0, ErrUnknownID
	}
	insertStart, ok := insertion.StartTime()
	if !ok {
		return 0, ErrEmptyInsertion
	}

	spliced := trajectory.New(e.traj.GetMapName())
	for _, wp := range e.traj.Snapshot() {
		if wp.Time.Before(insertStart) {
			if _, ok := spliced.Insert(wp.Time, wp.Profile, wp.Position, wp.Velocity); !ok {
				return 0, ErrInvariantViolation
			}
		}
	}
	for _, wp := range insertion.Snapshot() {
		if _, ok := spliced.Insert(wp.Time, wp.Profile, wp.Position, wp.Velocity); !ok {
			return 0, ErrInvariantViolation
		}
	}
	for _, wp := range e.traj.Snapshot() {
		if !wp.Time.Before(insertStart) {
			shifted := wp.Time.Add(delay)
			if _, ok := spliced.Insert(shifted, wp.Profile, wp.Position, wp.Velocity); !ok {
				return 0, ErrInvariantViolation
			}
		}
	}

	version := db.commitLocked(Change{
		Mode:     Interrupt,
		TargetID: id,
		MapName:  e.traj.GetMapName(),
		Payload:  InterruptPayload{Insertion: insertion.Clone(), Delay: delay},
	})
	e.traj = spliced
	e.lastVersion = version
	return version, nil
}

// Delay shifts every waypoint of entry id with time >= from by +duration.
func (db *Database) Delay(id EntryID, from time.Time, duration time.Duration) (uint64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	e, ok := db.entries[id]
	if !ok {
		return 0, ErrUnknownID
	}

	clone := e.traj.Clone()
	cursor := clone.LowerBound(from)
	if !cursor.IsEnd() {
		if err := cursor.AdjustTimes(duration); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvariantViolation, err)
		}
	}

	version := db.commitLocked(Change{
		Mode:     Delay,
		TargetID: id,
		MapName:  e.traj.GetMapName(),
		Payload:  DelayPayload{From: from, Duration: duration},
	})
	e.traj = clone
	e.lastVersion = version
	return version, nil
}

// Replace substitutes entry id's trajectory wholesale.
func (db *Database) Replace(id EntryID, newTraj *trajectory.Trajectory) (uint64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	e, ok := db.entries[id]
	if !ok {
		return 0, ErrUnknownID
	}
	owned := newTraj.Clone()

	version := db.commitLocked(Change{
		Mode:     Replace,
		TargetID: id,
		MapName:  owned.GetMapName(),
		Payload:  ReplacePayload{Trajectory: owned},
	})
	e.traj = owned
	e.lastVersion = version
	return version, nil
}

// Erase removes entry id.
func (db *Database) Erase(id EntryID) (uint64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	e, ok := db.entries[id]
	if !ok {
		return 0, ErrUnknownID
	}

	version := db.commitLocked(Change{
		Mode:     Erase,
		TargetID: id,
		MapName:  e.traj.GetMapName(),
		Payload:  ErasePayload{},
	})
	delete(db.entries, id)
	db.removeFromOrder(id)
	return version, nil
}

// Cull drops every waypoint strictly before before from every entry;
// entries that become empty are removed.
func (db *Database) Cull(before time.Time) (uint64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	version := db.commitLocked(Change{
		Mode:    Cull,
		Payload: CullPayload{Before: before},
	})

	var emptied []EntryID
	for id, e := range db.entries {
		cursor := e.traj.LowerBound(before)
		e.traj.EraseRange(e.traj.Begin(), cursor)
		e.lastVersion = version
		if e.traj.Size() == 0 {
			emptied = append(emptied, id)
		}
	}
	for _, id := range emptied {
		delete(db.entries, id)
		db.removeFromOrder(id)
	}
	return version, nil
}

// Changes evaluates q against the Database.
func (db *Database) Changes(q Query) (Patch, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if !q.hasWatermark {
		return db.compactedView(q), nil
	}
	return db.logView(q), nil
}

// ApplyPatch installs every Change in p into db without re-assigning
// versions, as a replica Database would when mirroring a remote
// participant's schedule over a transport such as infra/sync. Changes
// are applied in order; the first failure stops the patch short and is
// returned, leaving the Changes applied so far committed.
func (db *Database) ApplyPatch(p Patch) error {
	for _, c := range p.Changes {
		if err := db.applyReplayedChange(c); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns a snapshot of the currently-live Trajectory owned by id.
// It satisfies core/planning.ScheduleViewer.
func (db *Database) Lookup(id EntryID) (trajectory.Trajectory, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	e, ok := db.entries[id]
	if !ok {
		return trajectory.Trajectory{}, false
	}
	return *e.traj.Clone(), true
}

// compactedView synthesizes one Insert Change per currently-live entry,
// in insertion order, satisfying invariant 8.
func (db *Database) compactedView(q Query) Patch {
	patch := Patch{LatestVersion: db.version}
	for _, id := range db.order {
		e, ok := db.entries[id]
		if !ok {
			continue
		}
		if !q.matchesMap(e.traj.GetMapName()) {
			continue
		}
		start, ok2 := e.traj.StartTime()
		var finish time.Time
		hasSpan := ok2
		if ok2 {
			finish, _ = e.traj.FinishTime()
		}
		if !q.matchesWindow(start, finish, hasSpan) {
			continue
		}
		patch.Changes = append(patch.Changes, Change{
			Mode:     Insert,
			Version:  e.lastVersion,
			TargetID: id,
			MapName:  e.traj.GetMapName(),
			Payload:  InsertPayload{Trajectory: e.traj.Clone()},
		})
	}
	return patch
}

// logView filters the raw change log by watermark, map, and time window.
func (db *Database) logView(q Query) Patch {
	patch := Patch{LatestVersion: db.version}
	for _, c := range db.log {
		if c.Version <= q.afterVersion {
			continue
		}
		if !q.matchesMap(c.MapName) && c.Mode != Cull {
			continue
		}
		start, finish, ok := c.span()
		if !q.matchesWindow(start, finish, ok) {
			continue
		}
		patch.Changes = append(patch.Changes, c)
	}
	return patch
}

// commitLocked assigns the next version to c, appends it to the log,
// persists it if a Store is configured, and publishes it to subscribers.
// Callers must hold db.mu for writing.
func (db *Database) commitLocked(c Change) uint64 {
	db.version++
	c.Version = db.version
	db.log = append(db.log, c)

	if db.store != nil {
		if rec, err := toRecord(c); err == nil {
			_ = db.store.Append(context.Background(), rec)
		}
	}
	db.bus.Publish(c)
	return db.version
}

func (db *Database) removeFromOrder(id EntryID) {
	for i, existing := range db.order {
		if existing == id {
			db.order = append(db.order[:i], db.order[i+1:]...)
			return
		}
	}
}

// Replay reconstructs a Database's state from a Store's persisted log.
func Replay(ctx context.Context, store changelog.Store) (*Database, error) {
	records, err := store.Query(ctx, changelog.Query{})
	if err != nil {
		return nil, fmt.Errorf("schedule: replay query: %w", err)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Version < records[j].Version })

	db := New(store)
	for _, rec := range records {
		change, err := fromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("schedule: replay decode version %d: %w", rec.Version, err)
		}
		if err := db.applyReplayedChange(change); err != nil {
			return nil, fmt.Errorf("schedule: replay apply version %d: %w", rec.Version, err)
		}
	}
	return db, nil
}

// applyReplayedChange installs a previously-committed Change without
// re-assigning a version or re-persisting it.
func (db *Database) applyReplayedChange(c Change) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if c.Version > db.version {
		db.version = c.Version
	}
	db.log = append(db.log, c)

	switch p := c.Payload.(type) {
	case InsertPayload:
		db.entries[c.TargetID] = &entry{id: c.TargetID, traj: p.Trajectory, lastVersion: c.Version}
		db.order = append(db.order, c.TargetID)
		if c.TargetID >= db.nextID {
			db.nextID = c.TargetID + 1
		}
	case ReplacePayload:
		e, ok := db.entries[c.TargetID]
		if !ok {
			return ErrUnknownID
		}
		e.traj = p.Trajectory
		e.lastVersion = c.Version
	case InterruptPayload:
		e, ok := db.entries[c.TargetID]
		if !ok {
			return ErrUnknownID
		}
		insertStart, _ := p.Insertion.StartTime()
		spliced := trajectory.New(e.traj.GetMapName())
		for _, wp := range e.traj.Snapshot() {
			if wp.Time.Before(insertStart) {
				spliced.Insert(wp.Time, wp.Profile, wp.Position, wp.Velocity)
			}
		}
		for _, wp := range p.Insertion.Snapshot() {
			spliced.Insert(wp.Time, wp.Profile, wp.Position, wp.Velocity)
		}
		for _, wp := range e.traj.Snapshot() {
			if !wp.Time.Before(insertStart) {
				spliced.Insert(wp.Time.Add(p.Delay), wp.Profile, wp.Position, wp.Velocity)
			}
		}
		e.traj = spliced
		e.lastVersion = c.Version
	case DelayPayload:
		e, ok := db.entries[c.TargetID]
		if !ok {
			return ErrUnknownID
		}
		cursor := e.traj.LowerBound(p.From)
		if !cursor.IsEnd() {
			if err := cursor.AdjustTimes(p.Duration); err != nil {
				return err
			}
		}
		e.lastVersion = c.Version
	case ErasePayload:
		delete(db.entries, c.TargetID)
		db.removeFromOrder(c.TargetID)
	case CullPayload:
		var emptied []EntryID
		for id, e := range db.entries {
			cursor := e.traj.LowerBound(p.Before)
			e.traj.EraseRange(e.traj.Begin(), cursor)
			e.lastVersion = c.Version
			if e.traj.Size() == 0 {
				emptied = append(emptied, id)
			}
		}
		for _, id := range emptied {
			delete(db.entries, id)
			db.removeFromOrder(id)
		}
	}
	return nil
}
