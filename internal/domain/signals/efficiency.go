package signals

import (
	"math"

	"github.com/okian/unisignals/internal/domain/model"
)

// aspectDominance is how much larger one edge must be to own the advantage.
const aspectDominance = 1.5

// EfficiencyEdge determines which side has the offense/defense advantage.
// The defensive edge is positive when the home side concedes less.
func EfficiencyEdge(home, away model.TeamStats, threshold float64) Efficiency {
	offensive := home.ScoredPerGame() - away.ScoredPerGame()
	defensive := away.ConcededPerGame() - home.ConcededPerGame()
	total := offensive + defensive

	if math.Abs(total) < threshold {
		return Efficiency{Winner: WinnerBalanced, Aspect: AspectNone}
	}

	winner := WinnerHome
	if total < 0 {
		winner = WinnerAway
	}

	off, def := math.Abs(offensive), math.Abs(defensive)
	aspect := AspectBoth
	switch {
	case off > aspectDominance*def:
		aspect = AspectOffense
	case def > aspectDominance*off:
		aspect = AspectDefense
	}
	return Efficiency{Winner: winner, Aspect: aspect}
}
