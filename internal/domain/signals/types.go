// Package signals converts raw, sport-specific match statistics into five
// sport-agnostic signals (form, strength edge, tempo, efficiency edge and
// availability impact) plus a confidence score.
//
// Every function in this package is pure and total: degenerate input is
// replaced by neutral values, never rejected. Calls are safe from any number
// of goroutines.
package signals

import (
	"github.com/okian/unisignals/internal/domain/model"
	"github.com/okian/unisignals/internal/domain/sport"
)

// FormLabel classifies a form rating.
type FormLabel string

// Form labels.
const (
	FormStrong  FormLabel = "strong"
	FormNeutral FormLabel = "neutral"
	FormWeak    FormLabel = "weak"
)

// Trend says which side the recent form favours.
type Trend string

// Form trends.
const (
	TrendHome  Trend = "home"
	TrendAway  Trend = "away"
	TrendLevel Trend = "level"
)

// Direction is the side favoured by the strength edge.
type Direction string

// Edge directions.
const (
	DirectionHome Direction = "home"
	DirectionAway Direction = "away"
	DirectionEven Direction = "even"
)

// TempoLevel classifies expected match pace.
type TempoLevel string

// Tempo levels.
const (
	TempoLow    TempoLevel = "low"
	TempoMedium TempoLevel = "medium"
	TempoHigh   TempoLevel = "high"
)

// Winner is the side with the efficiency advantage.
type Winner string

// Efficiency winners.
const (
	WinnerHome     Winner = "home"
	WinnerAway     Winner = "away"
	WinnerBalanced Winner = "balanced"
)

// Aspect is where the efficiency advantage comes from.
type Aspect string

// Efficiency aspects.
const (
	AspectOffense Aspect = "offense"
	AspectDefense Aspect = "defense"
	AspectBoth    Aspect = "both"
	AspectNone    Aspect = "none"
)

// ImpactLevel is the severity of roster absences.
type ImpactLevel string

// Availability impact levels, least to most severe.
const (
	ImpactLow      ImpactLevel = "low"
	ImpactMedium   ImpactLevel = "medium"
	ImpactHigh     ImpactLevel = "high"
	ImpactCritical ImpactLevel = "critical"
)

// Tier is the confidence tier of a signal bundle.
type Tier string

// Confidence tiers.
const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// Edge is the bounded strength edge. Percentage is always within [0, 20]
// and is 0 exactly when Direction is DirectionEven.
type Edge struct {
	Direction  Direction `json:"direction"`
	Percentage int       `json:"percentage"`
}

// Efficiency is the offensive/defensive advantage.
type Efficiency struct {
	Winner Winner `json:"winner"`
	Aspect Aspect `json:"aspect"`
}

// Availability is the roster absence severity with a short note.
type Availability struct {
	Level ImpactLevel `json:"level"`
	Note  string      `json:"note"`
}

// Confidence is the aggregate clarity of a bundle.
type Confidence struct {
	Tier  Tier `json:"tier"`
	Score int  `json:"score"`
}

// FormDisplay is the UI rendering of both sides' form.
type FormDisplay struct {
	Home       FormLabel `json:"home"`
	Away       FormLabel `json:"away"`
	HomeRating int       `json:"home_rating"`
	AwayRating int       `json:"away_rating"`
	Trend      Trend     `json:"trend"`
}

// TempoDisplay is the UI rendering of the tempo signal.
type TempoDisplay struct {
	Level TempoLevel `json:"level"`
	Unit  string     `json:"unit"`
}

// AvailabilityDisplay is the UI rendering of the availability signal.
type AvailabilityDisplay struct {
	Level        ImpactLevel    `json:"level"`
	Notes        string         `json:"notes"`
	HomeInjuries []model.Injury `json:"home_injuries"`
	AwayInjuries []model.Injury `json:"away_injuries"`
	HomeKeyOut   []string       `json:"home_key_out"`
	AwayKeyOut   []string       `json:"away_key_out"`
}

// Display is the rich structure consumed by UI widgets. It is never sent to
// the prompt builder.
type Display struct {
	Form         FormDisplay         `json:"form"`
	Edge         Edge                `json:"edge"`
	Tempo        TempoDisplay        `json:"tempo"`
	Efficiency   Efficiency          `json:"efficiency"`
	Availability AvailabilityDisplay `json:"availability"`
}

// UniversalSignals is the engine output. It is built fresh on every call and
// shares no memory with the input.
type UniversalSignals struct {
	Sport              sport.Type `json:"sport"`
	Form               string     `json:"form"`
	StrengthEdge       string     `json:"strength_edge"`
	Tempo              string     `json:"tempo"`
	EfficiencyEdge     string     `json:"efficiency_edge"`
	AvailabilityImpact string     `json:"availability_impact"`
	Confidence         Tier       `json:"confidence"`
	ClarityScore       int        `json:"clarity_score"`
	Display            Display    `json:"display"`
}

// PromptFields holds only the five short labels that go into a model prompt.
type PromptFields struct {
	Form               string `json:"form"`
	StrengthEdge       string `json:"strength_edge"`
	Tempo              string `json:"tempo"`
	EfficiencyEdge     string `json:"efficiency_edge"`
	AvailabilityImpact string `json:"availability_impact"`
}

// PromptFields returns the prompt-facing subset of the bundle.
func (u UniversalSignals) PromptFields() PromptFields {
	return PromptFields{
		Form:               u.Form,
		StrengthEdge:       u.StrengthEdge,
		Tempo:              u.Tempo,
		EfficiencyEdge:     u.EfficiencyEdge,
		AvailabilityImpact: u.AvailabilityImpact,
	}
}
