package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/glebarez/go-sqlite" // registers the "sqlite" driver

	"github.com/okian/onice/internal/domain/model"
	"github.com/okian/onice/internal/domain/timeline"
	"github.com/okian/onice/pkg/metrics"
)

// SQLiteStore implements Store on an embedded SQLite database. One game is
// one transaction; skater slots and goalies store 0 for an empty slot, the
// same convention the in-memory rows use.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS games (
	game_id           TEXT PRIMARY KEY,
	verdict           TEXT NOT NULL,
	notes             TEXT NOT NULL,
	dropped_shifts    INTEGER NOT NULL,
	repaired_shifts   INTEGER NOT NULL,
	truncated_seconds INTEGER NOT NULL,
	conflict_seconds  INTEGER NOT NULL,
	unknown_players   TEXT NOT NULL,
	gated_seconds     INTEGER NOT NULL,
	seconds           INTEGER NOT NULL,
	created_at        DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS timeline_rows (
	game_id       TEXT NOT NULL,
	second        INTEGER NOT NULL,
	h1 INTEGER NOT NULL, h2 INTEGER NOT NULL, h3 INTEGER NOT NULL,
	h4 INTEGER NOT NULL, h5 INTEGER NOT NULL, h6 INTEGER NOT NULL,
	hg INTEGER NOT NULL,
	r1 INTEGER NOT NULL, r2 INTEGER NOT NULL, r3 INTEGER NOT NULL,
	r4 INTEGER NOT NULL, r5 INTEGER NOT NULL, r6 INTEGER NOT NULL,
	rg INTEGER NOT NULL,
	home_strength TEXT NOT NULL,
	road_strength TEXT NOT NULL,
	PRIMARY KEY (game_id, second)
);
`

// NewSQLiteStore opens (or creates) the database at path and ensures the
// schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveTimeline persists one game's result in a single transaction.
func (s *SQLiteStore) SaveTimeline(ctx context.Context, res model.GameResult) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds()))
	}()

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM games WHERE game_id = ?`, res.GameID).Scan(&exists)
	if err != nil {
		metrics.RecordStoreWriteError()
		return fmt.Errorf("check game %s: %w", res.GameID, err)
	}
	if exists > 0 {
		return ErrAlreadySaved
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		metrics.RecordStoreWriteError()
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	rep := res.Report
	_, err = tx.ExecContext(ctx,
		`INSERT INTO games (game_id, verdict, notes, dropped_shifts, repaired_shifts,
			truncated_seconds, conflict_seconds, unknown_players, gated_seconds, seconds)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.GameID, string(rep.Verdict), joinNotes(rep.Notes),
		rep.DroppedShifts, rep.RepairedShifts,
		rep.TruncatedSeconds, rep.ConflictSeconds,
		joinIDs(rep.UnknownPlayers), rep.GatedSeconds, rep.Seconds,
	)
	if err != nil {
		metrics.RecordStoreWriteError()
		return fmt.Errorf("insert game %s: %w", res.GameID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO timeline_rows (game_id, second,
			h1, h2, h3, h4, h5, h6, hg,
			r1, r2, r3, r4, r5, r6, rg,
			home_strength, road_strength)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		metrics.RecordStoreWriteError()
		return fmt.Errorf("prepare row insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range res.Table.Rows() {
		_, err = stmt.ExecContext(ctx, res.GameID, row.Second,
			row.HomeSkaters[0], row.HomeSkaters[1], row.HomeSkaters[2],
			row.HomeSkaters[3], row.HomeSkaters[4], row.HomeSkaters[5],
			row.HomeGoalie,
			row.RoadSkaters[0], row.RoadSkaters[1], row.RoadSkaters[2],
			row.RoadSkaters[3], row.RoadSkaters[4], row.RoadSkaters[5],
			row.RoadGoalie,
			row.HomeStrength, row.RoadStrength,
		)
		if err != nil {
			metrics.RecordStoreWriteError()
			return fmt.Errorf("insert row %d of game %s: %w", row.Second, res.GameID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		metrics.RecordStoreWriteError()
		return fmt.Errorf("commit game %s: %w", res.GameID, err)
	}
	return nil
}

// Timeline loads a previously saved table and report.
func (s *SQLiteStore) Timeline(ctx context.Context, gameID string) (*timeline.Table, timeline.Report, error) {
	var rep timeline.Report
	var verdict, notes, unknown string
	err := s.db.QueryRowContext(ctx,
		`SELECT verdict, notes, dropped_shifts, repaired_shifts, truncated_seconds,
			conflict_seconds, unknown_players, gated_seconds, seconds
		 FROM games WHERE game_id = ?`, gameID).
		Scan(&verdict, &notes, &rep.DroppedShifts, &rep.RepairedShifts,
			&rep.TruncatedSeconds, &rep.ConflictSeconds, &unknown,
			&rep.GatedSeconds, &rep.Seconds)
	if err == sql.ErrNoRows {
		return nil, timeline.Report{}, ErrNotFound
	}
	if err != nil {
		return nil, timeline.Report{}, fmt.Errorf("load game %s: %w", gameID, err)
	}
	rep.Verdict = timeline.Verdict(verdict)
	rep.Notes = splitNotes(notes)
	rep.UnknownPlayers = splitIDs(unknown)

	rows, err := s.db.QueryContext(ctx,
		`SELECT second, h1, h2, h3, h4, h5, h6, hg,
			r1, r2, r3, r4, r5, r6, rg, home_strength, road_strength
		 FROM timeline_rows WHERE game_id = ? ORDER BY second`, gameID)
	if err != nil {
		return nil, timeline.Report{}, fmt.Errorf("load rows of game %s: %w", gameID, err)
	}
	defer rows.Close()

	out := make([]timeline.Row, 0, rep.Seconds)
	for rows.Next() {
		var r timeline.Row
		err := rows.Scan(&r.Second,
			&r.HomeSkaters[0], &r.HomeSkaters[1], &r.HomeSkaters[2],
			&r.HomeSkaters[3], &r.HomeSkaters[4], &r.HomeSkaters[5],
			&r.HomeGoalie,
			&r.RoadSkaters[0], &r.RoadSkaters[1], &r.RoadSkaters[2],
			&r.RoadSkaters[3], &r.RoadSkaters[4], &r.RoadSkaters[5],
			&r.RoadGoalie,
			&r.HomeStrength, &r.RoadStrength,
		)
		if err != nil {
			return nil, timeline.Report{}, fmt.Errorf("scan row of game %s: %w", gameID, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, timeline.Report{}, fmt.Errorf("iterate rows of game %s: %w", gameID, err)
	}

	return timeline.NewTable(out), rep, nil
}

// Games returns the ids of all saved games, sorted ascending.
func (s *SQLiteStore) Games(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT game_id FROM games ORDER BY game_id`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan game id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Count returns the number of saved games.
func (s *SQLiteStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM games`).Scan(&n); err != nil {
		return 0
	}
	return n
}

func joinNotes(notes []timeline.Note) string {
	parts := make([]string, len(notes))
	for i, n := range notes {
		parts[i] = string(n)
	}
	return strings.Join(parts, ",")
}

func splitNotes(s string) []timeline.Note {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	notes := make([]timeline.Note, len(parts))
	for i, p := range parts {
		notes[i] = timeline.Note(p)
	}
	return notes
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func splitIDs(s string) []int64 {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
