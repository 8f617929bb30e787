// Package model contains the job and result types passed between layers.
package model

import (
	"github.com/okian/onice/internal/domain/shift"
	"github.com/okian/onice/internal/domain/timeline"
)

// GameJob is one game's worth of already-fetched inputs: the shift batch,
// the game metadata, and the position lookup for every roster player.
type GameJob struct {
	JobID     string
	GameID    string
	Context   shift.GameContext
	Records   []shift.Record
	Positions map[int64]shift.Position
}

// GameResult pairs the reconstructed table with its quality report.
type GameResult struct {
	JobID  string
	GameID string
	Table  *timeline.Table
	Report timeline.Report
}
