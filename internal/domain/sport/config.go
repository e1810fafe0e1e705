package sport

// Scoring units.
const (
	UnitGoals  = "goals"
	UnitPoints = "points"
	UnitRounds = "rounds"
)

// Per-unit scale applied to the per-game scoring differential when computing
// the strength edge. Point sports produce differentials roughly twice as large
// as goal sports, so they get a smaller scale. The scale already includes the
// scoring factor's 0.15 weight; the calculator applies it without a separate
// multiplier.
const (
	pointScoringScale = 0.008
	goalScoringScale  = 0.015
)

// Config holds the per-sport constants used by the signal calculators.
// Tempo thresholds and the efficiency threshold are expressed in the sport's
// scoring unit per team per game.
type Config struct {
	HasDraw             bool
	TempoLow            float64
	TempoHigh           float64
	HomeAdvantage       float64
	EfficiencyThreshold float64
	ScoringScale        float64
	ScoringUnit         string
}

// WinPoints returns the points a win is worth in the form rating.
func (c Config) WinPoints() float64 {
	if c.HasDraw {
		return 3
	}
	return 1
}

// configs is built once and never mutated; ConfigFor hands out copies.
// Home advantage bases stay below 0.02 so that two identical sides never
// register a non-even edge from venue alone.
var configs = map[Type]Config{ //nolint:gochecknoglobals // immutable lookup table
	Soccer: {
		HasDraw:             true,
		TempoLow:            1.1,
		TempoHigh:           1.6,
		HomeAdvantage:       0.015,
		EfficiencyThreshold: 0.3,
		ScoringScale:        goalScoringScale,
		ScoringUnit:         UnitGoals,
	},
	Basketball: {
		HasDraw:             false,
		TempoLow:            105,
		TempoHigh:           118,
		HomeAdvantage:       0.012,
		EfficiencyThreshold: 3.0,
		ScoringScale:        pointScoringScale,
		ScoringUnit:         UnitPoints,
	},
	Football: {
		HasDraw:             false,
		TempoLow:            19,
		TempoHigh:           26,
		HomeAdvantage:       0.01,
		EfficiencyThreshold: 2.5,
		ScoringScale:        pointScoringScale,
		ScoringUnit:         UnitPoints,
	},
	Hockey: {
		HasDraw:             false,
		TempoLow:            2.7,
		TempoHigh:           3.3,
		HomeAdvantage:       0.008,
		EfficiencyThreshold: 0.3,
		ScoringScale:        goalScoringScale,
		ScoringUnit:         UnitGoals,
	},
	MMA: {
		HasDraw:             true,
		TempoLow:            1.5,
		TempoHigh:           2.5,
		HomeAdvantage:       0,
		EfficiencyThreshold: 0.2,
		ScoringScale:        goalScoringScale,
		ScoringUnit:         UnitRounds,
	},
}

// ConfigFor returns the configuration for t. Unknown types get the soccer
// configuration.
func ConfigFor(t Type) Config {
	if c, ok := configs[t]; ok {
		return c
	}
	return configs[Soccer]
}
