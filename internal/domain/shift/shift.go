// Package shift contains the raw shift record types and the normalizer
// that converts them into absolute-game-second intervals.
package shift

import (
	"strconv"
	"strings"
)

// Game clock constants, in seconds.
const (
	// PeriodSeconds is the length of a regulation period.
	PeriodSeconds = 1200

	// OvertimeSeconds is the length of a regular-season overtime frame.
	OvertimeSeconds = 300
)

// Phase selects how periods past regulation map onto the game clock.
type Phase int

const (
	// PhaseRegularSeason plays a single short overtime; the frame after it
	// (the shootout) starts at 3900 rather than on a 1200s boundary.
	PhaseRegularSeason Phase = iota

	// PhasePlayoffs plays full-length overtime periods back to back.
	PhasePlayoffs
)

// Position partitions players into goalies and skaters.
type Position int

const (
	PositionSkater Position = iota
	PositionGoalie
)

// PositionSource supplies player positions. Positions are not inferable
// from shift data alone; callers inject a roster-backed implementation.
type PositionSource interface {
	// Position reports the position for a player id and whether it is known.
	Position(playerID int64) (Position, bool)
}

// Record is one raw player-shift as delivered by the upstream feed.
// Start and End are period clock values, either "mm:ss" or plain seconds.
// Duration is what the feed claims; it is frequently inconsistent with
// Start/End and is never treated as authoritative.
type Record struct {
	PlayerID int64  `json:"player_id"`
	TeamID   int64  `json:"team_id"`
	Period   int    `json:"period"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Duration int    `json:"duration"`
}

// GameContext carries the per-game metadata the pipeline needs.
type GameContext struct {
	HomeTeamID        int64 `json:"home_team_id"`
	RoadTeamID        int64 `json:"road_team_id"`
	RegulationPeriods int   `json:"regulation_periods"`

	// MinFinalSecond is the configured floor for the derived final second,
	// e.g. 3600 for a finished regulation game. Zero means "max observed end".
	MinFinalSecond int `json:"min_final_second"`
}

// Interval is a normalized shift: absolute game seconds, start convention
// already applied. The player is on ice for every second in [StartAbs, EndAbs].
type Interval struct {
	PlayerID int64
	TeamID   int64
	StartAbs int
	EndAbs   int
}

// Duration returns the shift's total length used for capacity tie-breaking.
func (iv Interval) Duration() int { return iv.EndAbs - iv.StartAbs }

// ParseClock converts a period clock value to seconds. It accepts "mm:ss"
// or a plain integer number of seconds.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ':'); i >= 0 {
		mins, err := strconv.Atoi(s[:i])
		if err != nil {
			return 0, ErrBadClock
		}
		secs, err := strconv.Atoi(s[i+1:])
		if err != nil || secs < 0 || mins < 0 {
			return 0, ErrBadClock
		}
		return 60*mins + secs, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, ErrBadClock
	}
	return n, nil
}

// PeriodOffset returns the number of game seconds elapsed before the given
// period starts. Regulation periods sit on 1200s boundaries. In the regular
// season the frame after overtime starts at 3900 because overtime itself is
// only five minutes; in the playoffs every period is full length.
func PeriodOffset(period, regulationPeriods int, phase Phase) int {
	if period <= regulationPeriods+1 || phase == PhasePlayoffs {
		return PeriodSeconds * (period - 1)
	}
	extra := period - regulationPeriods - 1 // frames past the first overtime
	return PeriodSeconds*regulationPeriods + OvertimeSeconds*extra
}
