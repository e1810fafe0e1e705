package signals

import (
	"github.com/okian/unisignals/internal/domain/model"
	"github.com/okian/unisignals/internal/domain/sport"
)

// ScoringRate is the mean of both sides' scored and conceded per-game rates.
func ScoringRate(home, away model.TeamStats) float64 {
	return (home.ScoredPerGame() + away.ScoredPerGame() + home.ConcededPerGame() + away.ConcededPerGame()) / 4
}

// Tempo classifies expected pace against the sport's thresholds.
func Tempo(home, away model.TeamStats, cfg sport.Config) TempoLevel {
	return tempoForRate(ScoringRate(home, away), cfg)
}

func tempoForRate(rate float64, cfg sport.Config) TempoLevel {
	switch {
	case rate < cfg.TempoLow:
		return TempoLow
	case rate > cfg.TempoHigh:
		return TempoHigh
	default:
		return TempoMedium
	}
}
