package signals

// Clarity weights sum to 100.
const (
	formClarityWeight         = 25
	edgeClarityWeight         = 30
	efficiencyClarityWeight   = 25
	availabilityClarityWeight = 20

	highTierScore   = 70
	mediumTierScore = 45

	decisiveEdgePercentage = 4
)

// ConfidenceInputs says which signals were decisive.
type ConfidenceInputs struct {
	FormDecisive       bool // ratings at least 10 points apart
	EdgeDecisive       bool // edge of at least 4%
	EfficiencyDecisive bool // a side owns the efficiency edge
	AvailabilityStable bool // impact low or medium
}

// ComputeConfidence aggregates signal clarity into a tier and 0-100 score.
func ComputeConfidence(in ConfidenceInputs) Confidence {
	score := 0
	if in.FormDecisive {
		score += formClarityWeight
	}
	if in.EdgeDecisive {
		score += edgeClarityWeight
	}
	if in.EfficiencyDecisive {
		score += efficiencyClarityWeight
	}
	if in.AvailabilityStable {
		score += availabilityClarityWeight
	}
	return Confidence{Tier: TierFor(score), Score: score}
}

// TierFor maps a clarity score to its tier.
func TierFor(score int) Tier {
	switch {
	case score >= highTierScore:
		return TierHigh
	case score >= mediumTierScore:
		return TierMedium
	default:
		return TierLow
	}
}
