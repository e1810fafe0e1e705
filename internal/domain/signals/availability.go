package signals

import (
	"fmt"
	"strings"

	"github.com/okian/unisignals/internal/domain/model"
)

// Availability thresholds. The first matching rule wins.
const (
	criticalKeyOut   = 3
	highInjuries     = 5
	mediumInjuries   = 2
	noAbsencesNote   = "No significant absences"
	unknownKeyPlayer = "key player"
)

// AvailabilityImpact classifies roster absences for both sides. It is an
// ordinal classifier over counts, not a weighted score.
func AvailabilityImpact(homeKeyOut, awayKeyOut []string, homeInjuries, awayInjuries []model.Injury) Availability {
	keyOut := len(homeKeyOut) + len(awayKeyOut)
	injuries := len(homeInjuries) + len(awayInjuries)

	switch {
	case keyOut >= criticalKeyOut:
		return Availability{Level: ImpactCritical, Note: fmt.Sprintf("%d key players out", keyOut)}
	case keyOut >= 1:
		return Availability{Level: ImpactHigh, Note: firstKnown(homeKeyOut, awayKeyOut) + " out"}
	case injuries >= highInjuries:
		return Availability{Level: ImpactHigh, Note: fmt.Sprintf("%d players injured", injuries)}
	case injuries >= mediumInjuries:
		return Availability{Level: ImpactMedium, Note: fmt.Sprintf("%d players injured", injuries)}
	default:
		return Availability{Level: ImpactLow, Note: noAbsencesNote}
	}
}

// firstKnown returns the first non-blank key player name, home side first.
func firstKnown(lists ...[]string) string {
	for _, l := range lists {
		for _, name := range l {
			if n := strings.TrimSpace(name); n != "" {
				return n
			}
		}
	}
	return unknownKeyPlayer
}

// stable reports whether the absence level leaves the other signals intact.
func (a Availability) stable() bool {
	return a.Level == ImpactLow || a.Level == ImpactMedium
}
