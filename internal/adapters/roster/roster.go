// Package roster provides position-lookup adapters for the pipeline.
package roster

import (
	"strconv"

	"github.com/okian/onice/internal/domain/shift"
)

// Static is an immutable map-backed position source.
type Static struct {
	positions map[int64]shift.Position
}

// NewStatic creates a position source over a copied map.
func NewStatic(positions map[int64]shift.Position) *Static {
	m := make(map[int64]shift.Position, len(positions))
	for id, pos := range positions {
		m[id] = pos
	}
	return &Static{positions: m}
}

// Position reports the position for a player id and whether it is known.
func (s *Static) Position(playerID int64) (shift.Position, bool) {
	pos, ok := s.positions[playerID]
	return pos, ok
}

// ParsePositions converts the wire shape used by job files (player id
// string to roster position code) into the pipeline's map. "G" is a
// goalie; every other code (C, L, R, D, ...) is a skater.
func ParsePositions(codes map[string]string) (map[int64]shift.Position, error) {
	out := make(map[int64]shift.Position, len(codes))
	for key, code := range codes {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, ErrBadPlayerID
		}
		if code == "G" {
			out[id] = shift.PositionGoalie
		} else {
			out[id] = shift.PositionSkater
		}
	}
	return out, nil
}
