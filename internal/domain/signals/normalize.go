package signals

import (
	"fmt"
	"math"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/okian/unisignals/internal/domain/model"
	"github.com/okian/unisignals/internal/domain/sport"
)

// Normalize turns one raw match into its universal signals. Each calculator
// runs exactly once and every input, however degenerate, yields a complete
// bundle.
func Normalize(in model.RawMatchInput) UniversalSignals {
	st := sport.Classify(in.Sport)
	cfg := sport.ConfigFor(st)

	homeForm := FormRating(in.HomeForm, cfg.HasDraw)
	awayForm := FormRating(in.AwayForm, cfg.HasDraw)
	edge := EdgeFromRaw(strengthFactors(in, cfg, homeForm, awayForm).Raw())
	tempo := Tempo(in.HomeStats, in.AwayStats, cfg)
	eff := EfficiencyEdge(in.HomeStats, in.AwayStats, cfg.EfficiencyThreshold)
	avail := AvailabilityImpact(in.HomeKeyOut, in.AwayKeyOut, in.HomeInjuries, in.AwayInjuries)
	conf := ComputeConfidence(ConfidenceInputs{
		FormDecisive:       math.Abs(homeForm-awayForm) >= trendThreshold,
		EdgeDecisive:       edge.Percentage >= decisiveEdgePercentage,
		EfficiencyDecisive: eff.Winner != WinnerBalanced,
		AvailabilityStable: avail.stable(),
	})

	formDisplay := FormDisplay{
		Home:       LabelForm(homeForm),
		Away:       LabelForm(awayForm),
		HomeRating: int(math.Round(homeForm)),
		AwayRating: int(math.Round(awayForm)),
		Trend:      formTrend(homeForm, awayForm),
	}

	return UniversalSignals{
		Sport:              st,
		Form:               formText(formDisplay),
		StrengthEdge:       edgeText(edge),
		Tempo:              title(string(tempo)),
		EfficiencyEdge:     efficiencyText(eff),
		AvailabilityImpact: availabilityText(avail),
		Confidence:         conf.Tier,
		ClarityScore:       conf.Score,
		Display: Display{
			Form:       formDisplay,
			Edge:       edge,
			Tempo:      TempoDisplay{Level: tempo, Unit: cfg.ScoringUnit},
			Efficiency: eff,
			Availability: AvailabilityDisplay{
				Level:        avail.Level,
				Notes:        avail.Note,
				HomeInjuries: append([]model.Injury{}, in.HomeInjuries...),
				AwayInjuries: append([]model.Injury{}, in.AwayInjuries...),
				HomeKeyOut:   append([]string{}, in.HomeKeyOut...),
				AwayKeyOut:   append([]string{}, in.AwayKeyOut...),
			},
		},
	}
}

// Engine adapts Normalize to interfaces that expect a method.
type Engine struct{}

// Normalize implements the worker and service normalizer contracts.
func (Engine) Normalize(in model.RawMatchInput) UniversalSignals { return Normalize(in) }

func title(s string) string {
	return cases.Title(language.English).String(s)
}

func formText(f FormDisplay) string {
	return fmt.Sprintf("Home %s, Away %s", title(string(f.Home)), title(string(f.Away)))
}

func edgeText(e Edge) string {
	if e.Direction == DirectionEven {
		return "Even"
	}
	return fmt.Sprintf("%s +%d%%", title(string(e.Direction)), e.Percentage)
}

func efficiencyText(e Efficiency) string {
	switch e.Aspect {
	case AspectNone:
		return "Balanced"
	case AspectBoth:
		return title(string(e.Winner)) + " (offense and defense)"
	default:
		return fmt.Sprintf("%s (%s)", title(string(e.Winner)), e.Aspect)
	}
}

func availabilityText(a Availability) string {
	return title(string(a.Level)) + ": " + a.Note
}
