package schedule

import (
	"encoding/json"
	"time"
)

// Query is a pure value combining a maps filter, an optional time window,
// and a version watermark. The minimum grammar — watermark plus
// map-name filter — is what the pack exposes; a time window narrows
// further but neither filter is required.
type Query struct {
	allMaps bool
	mapName string

	hasWindow bool
	from, to  time.Time

	hasWatermark bool
	afterVersion uint64
}

// QueryEverything returns a Query with no filters and no watermark. A
// Changes call against it reconstructs the live state as a compacted
// stream of one Insert per currently-live entry, not a
// raw replay of the change log.
func QueryEverything() Query {
	return Query{allMaps: true}
}

// MakeQuery returns a Query carrying only a version watermark: the
// resulting Patch includes only Changes with version > afterVersion.
func MakeQuery(afterVersion uint64) Query {
	return Query{allMaps: true, hasWatermark: true, afterVersion: afterVersion}
}

// WithMap narrows the query to a single named map.
func (q Query) WithMap(mapName string) Query {
	q.allMaps = false
	q.mapName = mapName
	return q
}

// WithTimeWindow narrows the query to Changes whose associated time span
// intersects [from, to], inclusive on both ends.
func (q Query) WithTimeWindow(from, to time.Time) Query {
	q.hasWindow = true
	q.from = from
	q.to = to
	return q
}

func (q Query) matchesMap(mapName string) bool {
	return q.allMaps || q.mapName == mapName
}

func (q Query) matchesWindow(start, finish time.Time, ok bool) bool {
	if !q.hasWindow || !ok {
		return true
	}
	return !finish.Before(q.from) && !start.After(q.to)
}

// queryWire is the flat, exported encoding of Query used to carry it
// across a transport boundary between participants.
type queryWire struct {
	AllMaps      bool      `json:"all_maps"`
	MapName      string    `json:"map_name,omitempty"`
	HasWindow    bool      `json:"has_window,omitempty"`
	From         time.Time `json:"from,omitempty"`
	To           time.Time `json:"to,omitempty"`
	HasWatermark bool      `json:"has_watermark,omitempty"`
	AfterVersion uint64    `json:"after_version,omitempty"`
}

// MarshalJSON implements json.Marshaler so a Query can be sent over a
// message transport.
func (q Query) MarshalJSON() ([]byte, error) {
	return json.Marshal(queryWire{
		AllMaps:      q.allMaps,
		MapName:      q.mapName,
		HasWindow:    q.hasWindow,
		From:         q.from,
		To:           q.to,
		HasWatermark: q.hasWatermark,
		AfterVersion: q.afterVersion,
	})
}

// UnmarshalJSON implements json.Unmarshaler, the inverse of MarshalJSON.
func (q *Query) UnmarshalJSON(data []byte) error {
	var w queryWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	q.allMaps = w.AllMaps
	q.mapName = w.MapName
	q.hasWindow = w.HasWindow
	q.from = w.From
	q.to = w.To
	q.hasWatermark = w.HasWatermark
	q.afterVersion = w.AfterVersion
	return nil
}
