// Package strength derives a team's strength state from its resolved lineup.
package strength

import (
	"strconv"

	"github.com/okian/onice/internal/domain/lineup"
)

// Label returns the composite strength label for one team at one second.
// With a goalie in net the label is the skater count ("5"). With the net
// empty one skater is functionally the extra attacker, so six skaters and
// no goalie reads "5+1". Labels are per team; cross-team situations like
// power plays are a downstream concern.
func Label(skaterCount int, goaliePresent bool) string {
	if goaliePresent {
		return strconv.Itoa(skaterCount)
	}
	return strconv.Itoa(skaterCount-1) + "+1"
}

// ForSecond derives the label from a resolved second.
func ForSecond(rs lineup.ResolvedSecond) string {
	return Label(len(rs.Skaters), rs.Goalie != 0)
}
