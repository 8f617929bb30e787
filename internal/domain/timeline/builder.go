package timeline

import (
	"context"

	"github.com/okian/onice/internal/domain/lineup"
	"github.com/okian/onice/internal/domain/presence"
	"github.com/okian/onice/internal/domain/shift"
	"github.com/okian/onice/internal/domain/strength"
	"github.com/okian/onice/pkg/logger"
)

// Default gate configuration constants.
const (
	// defaultMinSeconds is the shortest final table still considered a
	// complete game; a regulation game runs 3600 seconds and a handful of
	// gate-dropped rows are tolerated.
	defaultMinSeconds = 3595

	// defaultGateThreshold is the minimum populated columns a second needs
	// to survive the gate: at least three skaters and a goalie per team,
	// the second itself, and both strength labels.
	defaultGateThreshold = 11
)

// Builder runs the full shift-to-timeline pipeline for single games.
// One builder is safe to reuse across games; it holds configuration only.
type Builder struct {
	normalizerOpts []shift.NormalizerOption
	minSeconds     int
	gateThreshold  int
	log            logger.Logger
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithPhase selects regular-season or playoff clock semantics.
func WithPhase(phase shift.Phase) Option {
	return func(b *Builder) {
		b.normalizerOpts = append(b.normalizerOpts, shift.WithPhase(phase))
	}
}

// WithMinSeconds overrides the minimum table length for a complete verdict.
func WithMinSeconds(seconds int) Option {
	return func(b *Builder) {
		if seconds > 0 {
			b.minSeconds = seconds
		}
	}
}

// WithGateThreshold overrides the minimum populated columns per second.
func WithGateThreshold(threshold int) Option {
	return func(b *Builder) {
		if threshold > 0 {
			b.gateThreshold = threshold
		}
	}
}

// WithLogger sets a custom logger for the builder.
func WithLogger(log logger.Logger) Option {
	return func(b *Builder) {
		if log != nil {
			b.log = log
		}
	}
}

// NewBuilder creates a builder with configuration options.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		minSeconds:    defaultMinSeconds,
		gateThreshold: defaultGateThreshold,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.log == nil {
		b.log = logger.Get().Named("builder")
	}
	return b
}

// Build reconstructs the per-second timeline for one game. It is a pure
// single-pass batch computation: best effort, never fatal for well-typed
// input. The returned report carries everything a caller needs to decide
// whether to trust or re-acquire the game.
func (b *Builder) Build(ctx context.Context, gctx shift.GameContext, records []shift.Record, positions shift.PositionSource) (*Table, Report) {
	normalizer := shift.NewNormalizer(append(b.normalizerOpts, shift.WithRegulationPeriods(gctx.RegulationPeriods))...)
	intervals, nstats := normalizer.Normalize(records)
	if nstats.Dropped > 0 {
		b.log.Warn(ctx, "dropped malformed shifts",
			logger.Int("dropped", nstats.Dropped),
			logger.Int("repair_failed", nstats.RepairFailed),
		)
	}

	finalSecond := shift.FinalSecond(intervals, gctx)
	entries := presence.Expand(intervals, finalSecond)

	resolver := lineup.NewResolver(positions)
	home, road, rstats := resolver.Resolve(entries, gctx, finalSecond)
	if rstats.TruncatedSeconds > 0 {
		b.log.Warn(ctx, "skater overcapacity truncated",
			logger.Int("seconds", rstats.TruncatedSeconds),
		)
	}
	if rstats.GoalieConflict {
		b.log.Warn(ctx, "conflicting goalie records resolved to primary goalie",
			logger.Int("seconds", rstats.ConflictSeconds),
		)
	}
	if len(rstats.UnknownPlayers) > 0 {
		b.log.Warn(ctx, "players with unknown position defaulted to skater",
			logger.Int("players", len(rstats.UnknownPlayers)),
		)
	}

	rows := make([]Row, 0, finalSecond+1)
	gated := 0
	for sec := 0; sec <= finalSecond; sec++ {
		row := Row{
			Second:       sec,
			HomeGoalie:   home[sec].Goalie,
			RoadGoalie:   road[sec].Goalie,
			HomeStrength: strength.ForSecond(home[sec]),
			RoadStrength: strength.ForSecond(road[sec]),
		}
		copy(row.HomeSkaters[:], home[sec].Skaters)
		copy(row.RoadSkaters[:], road[sec].Skaters)

		if nonNullColumns(row) < b.gateThreshold {
			gated++
			continue
		}
		rows = append(rows, row)
	}

	report := Report{
		DroppedShifts:    nstats.Dropped,
		RepairedShifts:   nstats.Repaired,
		TruncatedSeconds: rstats.TruncatedSeconds,
		ConflictSeconds:  rstats.ConflictSeconds,
		UnknownPlayers:   rstats.UnknownPlayers,
		GatedSeconds:     gated,
		Seconds:          len(rows),
	}
	report.Notes = notesFor(report, rstats.GoalieConflict)
	report.Verdict = verdictFor(report, b.minSeconds)

	return &Table{rows: rows}, report
}

func notesFor(r Report, goalieConflict bool) []Note {
	var notes []Note
	if r.DroppedShifts > 0 {
		notes = append(notes, NoteShiftDropped)
	}
	if r.TruncatedSeconds > 0 {
		notes = append(notes, NoteCapacityTruncated)
	}
	if goalieConflict {
		notes = append(notes, NoteGoalieConflict)
	}
	if len(r.UnknownPlayers) > 0 {
		notes = append(notes, NotePositionUnknown)
	}
	return notes
}

func verdictFor(r Report, minSeconds int) Verdict {
	switch {
	case r.Seconds < minSeconds:
		return VerdictInsufficientSeconds
	case r.DroppedShifts > 0:
		return VerdictContainsDroppedShifts
	default:
		return VerdictComplete
	}
}
