// Package timeline assembles the per-second on-ice table for one game and
// judges whether the reconstruction is trustworthy.
package timeline

import (
	"sort"

	"github.com/okian/onice/internal/domain/lineup"
)

// Verdict is the game-level quality judgement attached to every table.
type Verdict string

const (
	// VerdictComplete means the table covers a believable full game.
	VerdictComplete Verdict = "complete"

	// VerdictInsufficientSeconds means the final table is too short to be
	// trusted; callers decide whether to re-fetch or accept a partial game.
	VerdictInsufficientSeconds Verdict = "insufficient-seconds"

	// VerdictContainsDroppedShifts means the table is full length but some
	// raw shifts were discarded as artifacts along the way.
	VerdictContainsDroppedShifts Verdict = "contains-dropped-shifts"
)

// Note is a non-fatal annotation about data-quality repairs.
type Note string

const (
	NoteShiftDropped      Note = "shift-dropped"
	NoteCapacityTruncated Note = "capacity-truncated"
	NoteGoalieConflict    Note = "goalie-conflict"
	NotePositionUnknown   Note = "position-unknown"
)

// Report carries the quality verdict and repair counts for one game.
type Report struct {
	Verdict Verdict
	Notes   []Note

	DroppedShifts    int
	RepairedShifts   int
	TruncatedSeconds int
	ConflictSeconds  int
	UnknownPlayers   []int64
	GatedSeconds     int

	// Seconds is the number of rows in the final table.
	Seconds int
}

// Row is one second of the game. Skater arrays use 0 for an empty slot;
// a zero goalie means the net was empty. Slot order is the resolver's
// duration ranking, not a position assignment.
type Row struct {
	Second       int
	HomeSkaters  [lineup.MaxSkaters]int64
	HomeGoalie   int64
	RoadSkaters  [lineup.MaxSkaters]int64
	RoadGoalie   int64
	HomeStrength string
	RoadStrength string
}

// nonNullColumns counts the populated columns of a row: the second and both
// strength labels always count, plus every filled skater slot and goalie.
func nonNullColumns(r Row) int {
	n := 3
	for _, id := range r.HomeSkaters {
		if id != 0 {
			n++
		}
	}
	for _, id := range r.RoadSkaters {
		if id != 0 {
			n++
		}
	}
	if r.HomeGoalie != 0 {
		n++
	}
	if r.RoadGoalie != 0 {
		n++
	}
	return n
}

// Table is the immutable output of the pipeline: rows ordered by second,
// possibly with gaps where the completeness gate dropped seconds. It is
// built once per game and never mutated afterwards.
type Table struct {
	rows []Row
}

// NewTable builds a table from already-built rows, e.g. when loading a
// persisted timeline. Rows are copied and ordered by second.
func NewTable(rows []Row) *Table {
	owned := make([]Row, len(rows))
	copy(owned, rows)
	sort.Slice(owned, func(i, j int) bool { return owned[i].Second < owned[j].Second })
	return &Table{rows: owned}
}

// Rows returns the ordered rows. Callers must not modify the slice.
func (t *Table) Rows() []Row {
	return t.rows
}

// Len returns the number of seconds in the table.
func (t *Table) Len() int {
	return len(t.rows)
}

// At returns the row for a second, if the gate kept it.
func (t *Table) At(second int) (Row, bool) {
	i := sort.Search(len(t.rows), func(i int) bool {
		return t.rows[i].Second >= second
	})
	if i < len(t.rows) && t.rows[i].Second == second {
		return t.rows[i], true
	}
	return Row{}, false
}

// OnIce reports whether a player occupies any slot of the row.
func OnIce(r Row, playerID int64) bool {
	if playerID == 0 {
		return false
	}
	if r.HomeGoalie == playerID || r.RoadGoalie == playerID {
		return true
	}
	for _, id := range r.HomeSkaters {
		if id == playerID {
			return true
		}
	}
	for _, id := range r.RoadSkaters {
		if id == playerID {
			return true
		}
	}
	return false
}
