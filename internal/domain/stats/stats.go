// Package stats derives small downstream datasets from a finished timeline.
// Derived data never mutates the table; it is a separate output.
package stats

import (
	"sort"

	"github.com/okian/onice/internal/domain/timeline"
)

// PlayerTOI is one player's time on ice, total and split by the strength
// label of the player's own team at each second.
type PlayerTOI struct {
	PlayerID   int64
	Seconds    int
	ByStrength map[string]int
}

// TimeOnIce aggregates per-player seconds on ice from a timeline table.
// Output is sorted by player id so repeated runs are identical.
func TimeOnIce(t *timeline.Table) []PlayerTOI {
	acc := make(map[int64]*PlayerTOI)

	add := func(id int64, label string) {
		if id == 0 {
			return
		}
		p, ok := acc[id]
		if !ok {
			p = &PlayerTOI{PlayerID: id, ByStrength: make(map[string]int)}
			acc[id] = p
		}
		p.Seconds++
		p.ByStrength[label]++
	}

	for _, row := range t.Rows() {
		for _, id := range row.HomeSkaters {
			add(id, row.HomeStrength)
		}
		add(row.HomeGoalie, row.HomeStrength)
		for _, id := range row.RoadSkaters {
			add(id, row.RoadStrength)
		}
		add(row.RoadGoalie, row.RoadStrength)
	}

	out := make([]PlayerTOI, 0, len(acc))
	for _, p := range acc {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}

// FilterStrength returns the rows where both teams are at the given
// strength labels, e.g. ("5", "5") for 5v5 situational stats.
func FilterStrength(t *timeline.Table, home, road string) []timeline.Row {
	var rows []timeline.Row
	for _, row := range t.Rows() {
		if row.HomeStrength == home && row.RoadStrength == road {
			rows = append(rows, row)
		}
	}
	return rows
}
