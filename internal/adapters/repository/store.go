// Package repository defines the timeline store interface and errors.
//
// A timeline is written exactly once per game and never mutated; the store
// contract reflects that lifecycle.
package repository

import (
	"context"

	"github.com/okian/onice/internal/domain/model"
	"github.com/okian/onice/internal/domain/timeline"
)

// Store provides write-once persistence and read access for game timelines.
type Store interface {
	// SaveTimeline persists one game's table and report.
	// Returns ErrAlreadySaved if the game was written before.
	SaveTimeline(ctx context.Context, res model.GameResult) error

	// Timeline returns a previously saved table and report.
	// Returns ErrNotFound if the game is unknown.
	Timeline(ctx context.Context, gameID string) (*timeline.Table, timeline.Report, error)

	// Games returns the ids of all saved games, sorted ascending.
	Games(ctx context.Context) ([]string, error)

	// Count returns the number of saved games.
	Count(ctx context.Context) int
}
