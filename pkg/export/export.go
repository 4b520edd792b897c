// Package export renders a schedule.Patch as JSON or CSV for external
// consumers that do not speak the MQTT reference transport.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/LanderU/rmf-core/core/schedule"
)

// WriteJSON writes patch to w using the same flat encoding the MQTT
// transport sends over the wire (schedule.Patch's MarshalJSON).
func WriteJSON(w io.Writer, patch schedule.Patch) error {
	enc := json.NewEncoder(w)
	return enc.Encode(patch)
}

// WriteCSV writes one row per Change in patch, in commit order.
func WriteCSV(w io.Writer, patch schedule.Patch) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"entry_id", "map_name", "mode", "version"}); err != nil {
		return err
	}
	for _, c := range patch.Changes {
		rec := []string{
			strconv.FormatUint(uint64(c.TargetID), 10),
			c.MapName,
			c.Mode.String(),
			strconv.FormatUint(c.Version, 10),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
