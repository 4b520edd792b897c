package metrics

import (
	"context"
	"time"

	coremetrics "github.com/LanderU/rmf-core/core/metrics"
	"github.com/LanderU/rmf-core/core/schedule"
)

// StartChangeCollector subscribes to db and records a ChangeEvent for every
// Change it commits, until ctx is cancelled.
func StartChangeCollector(ctx context.Context, db *schedule.Database, sink coremetrics.MetricsSink) {
	if db == nil || sink == nil {
		return
	}
	changes, unsubscribe := db.Subscribe()
	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case c, ok := <-changes:
				if !ok {
					return
				}
				_ = sink.RecordChange(coremetrics.ChangeEvent{
					Mode:    c.Mode.String(),
					MapName: c.MapName,
					EntryID: uint64(c.TargetID),
					Version: c.Version,
					Time:    time.Now(),
				})
			}
		}
	}()
}
