package loadtest

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/unisignals/internal/domain/model"
)

var generatedSports = []string{"soccer", "premier league", "nba", "nfl", "nhl", "ufc"} //nolint:gochecknoglobals // fixed sample set

// Submission mirrors the POST /v1/matches body.
type Submission struct {
	MatchID string `json:"match_id,omitempty"`
	model.RawMatchInput
}

// Generate returns count plausible random submissions. The same seed always
// yields the same submissions, IDs included. Without IDs the server derives
// them from the input fingerprint.
func Generate(seed int64, count int, withIDs bool) ([]Submission, error) {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // synthetic data

	out := make([]Submission, count)
	for i := range out {
		out[i].RawMatchInput = randomMatch(rng, i)
		if withIDs {
			id, err := uuid.NewRandomFromReader(rng)
			if err != nil {
				return nil, fmt.Errorf("generate id: %w", err)
			}
			out[i].MatchID = id.String()
		}
	}
	return out, nil
}

func randomMatch(rng *rand.Rand, i int) model.RawMatchInput {
	name := generatedSports[rng.Intn(len(generatedSports))]
	hasDraw := name == "soccer" || name == "premier league"

	in := model.RawMatchInput{
		Sport:     name,
		HomeTeam:  fmt.Sprintf("Home %d", i),
		AwayTeam:  fmt.Sprintf("Away %d", i),
		HomeForm:  randomForm(rng, hasDraw),
		AwayForm:  randomForm(rng, hasDraw),
		HomeStats: randomStats(rng, name, hasDraw),
		AwayStats: randomStats(rng, name, hasDraw),
	}

	if total := rng.Intn(8); total > 0 {
		home := rng.Intn(total + 1)
		away := rng.Intn(total - home + 1)
		draws := 0
		if hasDraw {
			draws = total - home - away
		}
		in.HeadToHead = model.HeadToHead{Total: total, HomeWins: home, AwayWins: away, Draws: draws}
	}
	if rng.Intn(4) == 0 {
		in.HomeKeyOut = []string{fmt.Sprintf("Player H%d", i)}
	}
	if rng.Intn(4) == 0 {
		in.AwayInjuries = []model.Injury{{Player: fmt.Sprintf("Player A%d", i), Status: "doubtful"}}
	}
	return in
}

func randomForm(rng *rand.Rand, hasDraw bool) string {
	results := "WL"
	if hasDraw {
		results = "WDL"
	}
	var b strings.Builder
	for n := rng.Intn(6); n > 0; n-- {
		b.WriteByte(results[rng.Intn(len(results))])
	}
	return b.String()
}

// perGame is a rough scoring range per team per game for each sample sport.
func perGame(name string) (lo, hi int) {
	switch name {
	case "nba":
		return 95, 125
	case "nfl":
		return 14, 32
	case "nhl":
		return 2, 4
	case "ufc":
		return 0, 1
	default:
		return 0, 3
	}
}

func randomStats(rng *rand.Rand, name string, hasDraw bool) model.TeamStats {
	played := 5 + rng.Intn(30)
	wins := rng.Intn(played + 1)
	draws := 0
	if hasDraw {
		draws = rng.Intn(played - wins + 1)
	}
	lo, hi := perGame(name)
	return model.TeamStats{
		Played:   played,
		Wins:     wins,
		Draws:    draws,
		Losses:   played - wins - draws,
		Scored:   played * (lo + rng.Intn(hi-lo+1)),
		Conceded: played * (lo + rng.Intn(hi-lo+1)),
	}
}
