package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/onice/internal/domain/model"
	"github.com/okian/onice/internal/domain/timeline"
)

// MemoryStore implements Store in process memory. It serves tests and
// library callers that persist results through their own storage layer.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[string]model.GameResult
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{games: make(map[string]model.GameResult)}
}

// SaveTimeline persists one game's result, write-once.
func (s *MemoryStore) SaveTimeline(ctx context.Context, res model.GameResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.games[res.GameID]; exists {
		return ErrAlreadySaved
	}
	s.games[res.GameID] = res
	return nil
}

// Timeline returns a previously saved table and report.
func (s *MemoryStore) Timeline(ctx context.Context, gameID string) (*timeline.Table, timeline.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.games[gameID]
	if !ok {
		return nil, timeline.Report{}, ErrNotFound
	}
	return res.Table, res.Report, nil
}

// Games returns the ids of all saved games, sorted ascending.
func (s *MemoryStore) Games(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.games))
	for id := range s.games {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Count returns the number of saved games.
func (s *MemoryStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}
