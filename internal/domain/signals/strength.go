package signals

import (
	"math"

	"github.com/okian/unisignals/internal/domain/model"
	"github.com/okian/unisignals/internal/domain/sport"
)

// Strength edge weights and bounds. The scoring factor is weighted through
// sport.Config.ScoringScale and home advantage through sport.Config.HomeAdvantage.
const (
	formFactorWeight    = 0.40
	winRateFactorWeight = 0.20
	h2hFactorWeight     = 0.10
	h2hMinGames         = 3
	edgeCap             = 20
	evenThreshold       = 2
	percentScale        = 100
)

// StrengthFactors are the weighted contributions to the strength edge, as
// fractions (positive favours the home side).
type StrengthFactors struct {
	Form          float64
	WinRate       float64
	Scoring       float64
	HeadToHead    float64
	HomeAdvantage float64
}

// Raw returns the unclamped edge in percentage points.
func (f StrengthFactors) Raw() float64 {
	return (f.Form + f.WinRate + f.Scoring + f.HeadToHead + f.HomeAdvantage) * percentScale
}

// ComputeStrengthFactors derives the five weighted factors for a match.
func ComputeStrengthFactors(in model.RawMatchInput, cfg sport.Config) StrengthFactors {
	home := FormRating(in.HomeForm, cfg.HasDraw)
	away := FormRating(in.AwayForm, cfg.HasDraw)
	return strengthFactors(in, cfg, home, away)
}

func strengthFactors(in model.RawMatchInput, cfg sport.Config, homeForm, awayForm float64) StrengthFactors {
	f := StrengthFactors{
		Form:          (homeForm - awayForm) / maxFormRating * formFactorWeight,
		WinRate:       (in.HomeStats.WinRate() - in.AwayStats.WinRate()) * winRateFactorWeight,
		Scoring:       scoringDifferential(in.HomeStats, in.AwayStats) * cfg.ScoringScale,
		HomeAdvantage: cfg.HomeAdvantage,
	}
	if h := in.HeadToHead; h.Total >= h2hMinGames {
		f.HeadToHead = float64(h.HomeWins-h.AwayWins) / float64(h.Total) * h2hFactorWeight
	}
	return f
}

// scoringDifferential is the difference between the two sides' per-game
// scored-minus-conceded margins.
func scoringDifferential(home, away model.TeamStats) float64 {
	return home.PerGame(home.Scored-home.Conceded) - away.PerGame(away.Scored-away.Conceded)
}

// StrengthEdge computes the bounded strength edge for a match.
func StrengthEdge(in model.RawMatchInput, cfg sport.Config) Edge {
	return EdgeFromRaw(ComputeStrengthFactors(in, cfg).Raw())
}

// EdgeFromRaw clamps a raw edge to [-20, 20] and reports anything below two
// points as even.
func EdgeFromRaw(raw float64) Edge {
	if math.IsNaN(raw) {
		return Edge{Direction: DirectionEven}
	}
	clamped := math.Max(-edgeCap, math.Min(edgeCap, raw))
	magnitude := math.Abs(clamped)
	if magnitude < evenThreshold {
		return Edge{Direction: DirectionEven}
	}
	dir := DirectionHome
	if clamped < 0 {
		dir = DirectionAway
	}
	return Edge{Direction: dir, Percentage: int(math.Round(magnitude))}
}
