// Package presence expands normalized shift intervals into the per-second
// presence relation the capacity resolver consumes.
package presence

import (
	"github.com/okian/onice/internal/domain/shift"
)

// Entry marks one player on the ice for one second. Duration carries the
// shift's total length (not the one-second slice) so the resolver can
// rank by it when a team is over capacity.
type Entry struct {
	Second   int
	PlayerID int64
	TeamID   int64
	Duration int
}

// Expand produces one Entry per (second, player) for every integer second
// in [StartAbs, EndAbs] inclusive. Seconds past finalSecond are clipped.
// The output is a single dense pass over the intervals: its size is exactly
// the sum of interval lengths, and storage is presized to that bound.
func Expand(intervals []shift.Interval, finalSecond int) []Entry {
	total := 0
	for _, iv := range intervals {
		if iv.StartAbs > finalSecond {
			continue
		}
		end := min(iv.EndAbs, finalSecond)
		total += end - iv.StartAbs + 1
	}

	entries := make([]Entry, 0, total)
	for _, iv := range intervals {
		if iv.StartAbs > finalSecond {
			continue
		}
		end := min(iv.EndAbs, finalSecond)
		dur := iv.Duration()
		for sec := iv.StartAbs; sec <= end; sec++ {
			entries = append(entries, Entry{
				Second:   sec,
				PlayerID: iv.PlayerID,
				TeamID:   iv.TeamID,
				Duration: dur,
			})
		}
	}
	return entries
}
