// Package lineup resolves the per-second presence relation into at most
// six skaters and one goalie per team per second.
package lineup

import (
	"sort"

	"github.com/okian/onice/internal/domain/presence"
	"github.com/okian/onice/internal/domain/shift"
)

// MaxSkaters is the capacity of a team's skater slots for one second.
const MaxSkaters = 6

// ResolvedSecond is one team's resolved lineup for one second. Skaters are
// ordered by shift duration descending; the order is a ranking artifact,
// not a semantic position. Goalie is 0 when the net is empty.
type ResolvedSecond struct {
	Second  int
	Skaters []int64
	Goalie  int64
}

// Stats summarizes the artifacts the resolver had to repair for one game.
type Stats struct {
	// TruncatedSeconds counts team-seconds where more than MaxSkaters
	// skaters were present and the shortest shifts were dropped.
	TruncatedSeconds int

	// GoalieConflict is set when any second had more than one goalie
	// recorded for the same team.
	GoalieConflict bool

	// ConflictSeconds counts team-seconds where conflicting goalies were
	// dropped in favor of the game-wide primary goalie.
	ConflictSeconds int

	// UnknownPlayers lists ids that were defaulted to skater because the
	// position source did not know them. Sorted ascending.
	UnknownPlayers []int64
}

// candidate is one player present at a second, with the shift's total
// duration for ranking.
type candidate struct {
	playerID int64
	duration int
}

// Resolver partitions presence entries by position and enforces the
// per-second capacity invariant.
type Resolver struct {
	positions shift.PositionSource
}

// NewResolver creates a resolver over the supplied position source.
func NewResolver(positions shift.PositionSource) *Resolver {
	return &Resolver{positions: positions}
}

// Resolve produces one ResolvedSecond per team for every second in
// [0, finalSecond]. Seconds with no presence are still emitted; the
// completeness gate downstream decides what to keep.
func (r *Resolver) Resolve(entries []presence.Entry, gctx shift.GameContext, finalSecond int) (home, road []ResolvedSecond, stats Stats) {
	homeSide := newSide(finalSecond)
	roadSide := newSide(finalSecond)

	unknown := make(map[int64]struct{})

	for _, e := range entries {
		if e.Second < 0 || e.Second > finalSecond {
			continue
		}
		side := homeSide
		switch e.TeamID {
		case gctx.HomeTeamID:
		case gctx.RoadTeamID:
			side = roadSide
		default:
			// Entry for a team not in this game: upstream mixup, skip.
			continue
		}

		pos, ok := r.positions.Position(e.PlayerID)
		if !ok {
			unknown[e.PlayerID] = struct{}{}
			pos = shift.PositionSkater
		}
		if pos == shift.PositionGoalie {
			side.goalies[e.Second] = append(side.goalies[e.Second], e.PlayerID)
			side.goalieSeconds[e.PlayerID]++
		} else {
			side.skaters[e.Second] = append(side.skaters[e.Second], candidate{playerID: e.PlayerID, duration: e.Duration})
		}
	}

	home = homeSide.resolve(&stats)
	road = roadSide.resolve(&stats)

	stats.UnknownPlayers = make([]int64, 0, len(unknown))
	for id := range unknown {
		stats.UnknownPlayers = append(stats.UnknownPlayers, id)
	}
	sort.Slice(stats.UnknownPlayers, func(i, j int) bool {
		return stats.UnknownPlayers[i] < stats.UnknownPlayers[j]
	})

	return home, road, stats
}

// side accumulates one team's presence buckets.
type side struct {
	skaters       [][]candidate
	goalies       [][]int64
	goalieSeconds map[int64]int
}

func newSide(finalSecond int) *side {
	return &side{
		skaters:       make([][]candidate, finalSecond+1),
		goalies:       make([][]int64, finalSecond+1),
		goalieSeconds: make(map[int64]int),
	}
}

// primaryGoalie picks the goalie with the most seconds on ice across the
// whole game. Ties break to the lower player id for determinism.
func (s *side) primaryGoalie() int64 {
	var primary int64
	best := -1
	for id, secs := range s.goalieSeconds {
		if secs > best || (secs == best && id < primary) {
			primary = id
			best = secs
		}
	}
	return primary
}

// resolve enforces the capacity invariant for every second of one team.
func (s *side) resolve(stats *Stats) []ResolvedSecond {
	// The primary goalie is computed once per game, not per second, so
	// conflicting secondary goalies resolve identically everywhere.
	primary := s.primaryGoalie()

	out := make([]ResolvedSecond, len(s.skaters))
	for sec := range s.skaters {
		rs := ResolvedSecond{Second: sec}

		switch goalies := s.goalies[sec]; len(goalies) {
		case 0:
		case 1:
			rs.Goalie = goalies[0]
		default:
			stats.GoalieConflict = true
			stats.ConflictSeconds++
			for _, id := range goalies {
				if id == primary {
					rs.Goalie = primary
					break
				}
			}
		}

		cands := s.skaters[sec]
		sort.Slice(cands, func(i, j int) bool {
			if cands[i].duration != cands[j].duration {
				return cands[i].duration > cands[j].duration
			}
			return cands[i].playerID < cands[j].playerID
		})

		// Overlapping shifts can list a player twice in one second; keep
		// the higher-ranked occurrence.
		ranked := make([]int64, 0, len(cands))
		for _, c := range cands {
			if !containsID(ranked, c.playerID) {
				ranked = append(ranked, c.playerID)
			}
		}
		if len(ranked) > MaxSkaters {
			stats.TruncatedSeconds++
			ranked = ranked[:MaxSkaters]
		}
		rs.Skaters = ranked

		out[sec] = rs
	}
	return out
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
