package shift

// Stats summarizes what the normalizer did to one game's shift batch.
// Counts here are non-fatal data-quality signals, not errors.
type Stats struct {
	// Dropped counts shifts removed as logging artifacts: malformed clock
	// values, zero or negative duration, or inversions the one-time
	// period correction could not repair.
	Dropped int

	// Repaired counts shifts whose end fell before their start (a shift
	// crossing into a later period that was not flagged) and were fixed
	// by adding one period length to the end.
	Repaired int

	// RepairFailed counts shifts still inverted after the correction.
	// These are included in Dropped.
	RepairFailed int
}

// Normalizer converts raw shift records into absolute-second intervals.
type Normalizer struct {
	regulationPeriods int
	phase             Phase
}

// NormalizerOption applies a configuration option to the Normalizer.
type NormalizerOption func(*Normalizer)

// WithPhase selects regular-season or playoff clock semantics.
func WithPhase(phase Phase) NormalizerOption {
	return func(n *Normalizer) {
		n.phase = phase
	}
}

// WithRegulationPeriods overrides the number of regulation periods.
func WithRegulationPeriods(periods int) NormalizerOption {
	return func(n *Normalizer) {
		if periods > 0 {
			n.regulationPeriods = periods
		}
	}
}

// NewNormalizer creates a normalizer with configuration options.
func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		regulationPeriods: 3,
		phase:             PhaseRegularSeason,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize converts a raw shift batch into intervals in absolute game
// seconds. Start times are shifted forward by one second so that a stoppage
// at a shift boundary is attributed to the players ending their shift, not
// the ones starting the next one at the same tick; end times are unchanged.
// Malformed shifts are dropped and counted, never fatal.
func (n *Normalizer) Normalize(records []Record) ([]Interval, Stats) {
	intervals := make([]Interval, 0, len(records))
	var stats Stats

	for _, rec := range records {
		start, err := ParseClock(rec.Start)
		if err != nil {
			stats.Dropped++
			continue
		}
		end, err := ParseClock(rec.End)
		if err != nil {
			stats.Dropped++
			continue
		}
		if rec.Period < 1 {
			stats.Dropped++
			continue
		}

		off := PeriodOffset(rec.Period, n.regulationPeriods, n.phase)
		startAbs := off + start + 1
		endAbs := off + end

		switch {
		case endAbs == startAbs || endAbs == startAbs-1:
			// A shift that starts and immediately ends: duration <= 0
			// after the start convention. Logging artifact.
			stats.Dropped++
			continue
		case endAbs < startAbs:
			endAbs += PeriodSeconds
			if endAbs <= startAbs {
				stats.Dropped++
				stats.RepairFailed++
				continue
			}
			stats.Repaired++
		}

		intervals = append(intervals, Interval{
			PlayerID: rec.PlayerID,
			TeamID:   rec.TeamID,
			StartAbs: startAbs,
			EndAbs:   endAbs,
		})
	}

	return intervals, stats
}

// FinalSecond derives the last second of the game: the max observed shift
// end, floored by the context's configured minimum.
func FinalSecond(intervals []Interval, gctx GameContext) int {
	final := gctx.MinFinalSecond
	for _, iv := range intervals {
		if iv.EndAbs > final {
			final = iv.EndAbs
		}
	}
	return final
}
