// Package model contains domain models passed between layers.
package model

import (
	"crypto/sha1" //nolint:gosec // content versioning, not security
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// neutralWinRate substitutes the win rate of a side with no games played.
const neutralWinRate = 0.5

// TeamStats holds a side's season aggregates.
// Wins+Draws+Losses <= Played is assumed but not enforced.
type TeamStats struct {
	Played   int `json:"played"`
	Wins     int `json:"wins"`
	Draws    int `json:"draws"`
	Losses   int `json:"losses"`
	Scored   int `json:"scored"`
	Conceded int `json:"conceded"`
}

// PerGame returns v divided by games played, or 0 when nothing was played.
func (s TeamStats) PerGame(v int) float64 {
	if s.Played <= 0 {
		return 0
	}
	return float64(v) / float64(s.Played)
}

// ScoredPerGame returns the average scored per game.
func (s TeamStats) ScoredPerGame() float64 { return s.PerGame(s.Scored) }

// ConcededPerGame returns the average conceded per game.
func (s TeamStats) ConcededPerGame() float64 { return s.PerGame(s.Conceded) }

// WinRate returns wins over games played, 0.5 when nothing was played.
func (s TeamStats) WinRate() float64 {
	if s.Played <= 0 {
		return neutralWinRate
	}
	return float64(s.Wins) / float64(s.Played)
}

// HeadToHead aggregates historical results between the two sides, from the
// home side's perspective.
type HeadToHead struct {
	Total    int `json:"total"`
	HomeWins int `json:"home_wins"`
	AwayWins int `json:"away_wins"`
	Draws    int `json:"draws"`
}

// Injury describes a player absence reported by a provider feed.
type Injury struct {
	Player string `json:"player"`
	Status string `json:"status,omitempty"` // e.g. "out", "doubtful"
	Reason string `json:"reason,omitempty"`
}

// RawMatchInput is the only input to the signals engine.
type RawMatchInput struct {
	Sport    string `json:"sport"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`

	// Form strings are most-recent-first result characters (W/D/L).
	HomeForm string `json:"home_form"`
	AwayForm string `json:"away_form"`

	HomeStats  TeamStats  `json:"home_stats"`
	AwayStats  TeamStats  `json:"away_stats"`
	HeadToHead HeadToHead `json:"h2h"`

	HomeInjuries []Injury `json:"home_injuries,omitempty"`
	AwayInjuries []Injury `json:"away_injuries,omitempty"`

	// Key players confirmed out.
	HomeKeyOut []string `json:"home_key_out,omitempty"`
	AwayKeyOut []string `json:"away_key_out,omitempty"`
}

// Fingerprint returns a stable identity for the input, used as the match ID
// when a submission carries none. Team names are case-folded and stripped of
// diacritics so "Atlético" and "atletico" collide.
func (in RawMatchInput) Fingerprint() string {
	var b strings.Builder
	b.WriteString(normalizeName(in.Sport))
	b.WriteByte('|')
	b.WriteString(normalizeName(in.HomeTeam))
	b.WriteByte('|')
	b.WriteString(normalizeName(in.AwayTeam))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(in.HomeStats.Played))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(in.AwayStats.Played))
	b.WriteByte('|')
	b.WriteString(strings.ToUpper(in.HomeForm))
	b.WriteByte(':')
	b.WriteString(strings.ToUpper(in.AwayForm))
	return b.String()
}

// ContentHash returns a SHA-1 of the input's canonical JSON. Two inputs hash
// equal only when every field, absences included, is equal.
func (in RawMatchInput) ContentHash() string {
	data, err := json.Marshal(in)
	if err != nil {
		// Only plain data fields; Marshal cannot fail.
		return ""
	}
	sum := sha1.Sum(data) //nolint:gosec // content versioning, not security
	return hex.EncodeToString(sum[:])
}

// normalizeName lowercases, strips diacritics and collapses whitespace.
func normalizeName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

// MatchRequest is a submission flowing through the queue to the workers.
// Revision orders submissions of the same match; 0 means unversioned.
type MatchRequest struct {
	MatchID     string
	Input       RawMatchInput
	Revision    uint64
	SubmittedAt time.Time
}
