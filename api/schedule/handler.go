// Package scheduleapi exposes a schedule.Database over plain HTTP, as a
// second reference transport alongside infra/mqtt.
package scheduleapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/LanderU/rmf-core/core/schedule"
)

// NewChangesHandler returns an HTTP handler exposing a Database's
// incremental Changes via GET /api/schedule/changes. Query parameters:
// map_name restricts to one map, after_version narrows to the Changes
// committed since that watermark.
func NewChangesHandler(db *schedule.Database) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		q := schedule.QueryEverything()
		if mapName := r.URL.Query().Get("map_name"); mapName != "" {
			q = q.WithMap(mapName)
		}
		if raw := r.URL.Query().Get("after_version"); raw != "" {
			after, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				http.Error(w, "invalid after_version", http.StatusBadRequest)
				return
			}
			q = schedule.MakeQuery(after)
			if mapName := r.URL.Query().Get("map_name"); mapName != "" {
				q = q.WithMap(mapName)
			}
		}

		patch, err := db.Changes(q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(patch); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// NewLookupHandler returns an HTTP handler exposing a single
// participant's current Trajectory via GET /api/schedule/entries?id=N.
// id is read from the "id" query parameter, since this handler is mounted
// without a path-parameter router.
func NewLookupHandler(db *schedule.Database) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		raw := r.URL.Query().Get("id")
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}
		traj, ok := db.Lookup(schedule.EntryID(id))
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(traj.Snapshot()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
