package signals

import "unicode"

// Form rating constants.
const (
	neutralFormRating = 50
	strongFormRating  = 60
	weakFormRating    = 40
	maxFormRating     = 100
	trendThreshold    = 10
)

// formWeights weight results most-recent-first.
var formWeights = [...]float64{1.5, 1.3, 1.1, 1.0, 0.9} //nolint:gochecknoglobals // fixed weights

// FormRating returns a weighted 0-100 rating of a most-recent-first result
// string. Characters other than W, D and L (any case) are skipped, and only
// the first five results count. A draw scores only when the sport allows
// draws; otherwise it counts as a played game worth nothing. A string with no
// results rates a neutral 50.
func FormRating(form string, hasDraw bool) float64 {
	winPoints := 1.0
	if hasDraw {
		winPoints = 3
	}

	var achieved, possible float64
	n := 0
	for _, r := range form {
		if n == len(formWeights) {
			break
		}
		w := formWeights[n]
		switch unicode.ToUpper(r) {
		case 'W':
			achieved += winPoints * w
		case 'D':
			if hasDraw {
				achieved += w
			}
		case 'L':
		default:
			continue
		}
		possible += winPoints * w
		n++
	}

	if possible == 0 {
		return neutralFormRating
	}
	return achieved / possible * maxFormRating
}

// LabelForm classifies a form rating.
func LabelForm(rating float64) FormLabel {
	switch {
	case rating >= strongFormRating:
		return FormStrong
	case rating <= weakFormRating:
		return FormWeak
	default:
		return FormNeutral
	}
}

// formTrend says which side the two ratings favour.
func formTrend(home, away float64) Trend {
	switch diff := home - away; {
	case diff >= trendThreshold:
		return TrendHome
	case diff <= -trendThreshold:
		return TrendAway
	default:
		return TrendLevel
	}
}
