// Package sport classifies free-text sport identifiers into canonical sport
// types and exposes the immutable per-sport configuration table.
package sport

import (
	"strings"

	"golang.org/x/text/cases"
)

// Type is a canonical sport type.
type Type string

// Canonical sport types.
const (
	Soccer     Type = "soccer"
	Basketball Type = "basketball"
	Football   Type = "football" // American football
	Hockey     Type = "hockey"
	MMA        Type = "mma"
)

// All lists the canonical sport types in classification priority order,
// followed by the default.
var All = []Type{MMA, Basketball, Football, Hockey, Soccer} //nolint:gochecknoglobals // fixed lookup order

// String implements fmt.Stringer.
func (t Type) String() string { return string(t) }

// Valid reports whether t is one of the canonical types.
func (t Type) Valid() bool {
	_, ok := configs[t]
	return ok
}

// keywordSet binds a sport type to the substrings that identify it.
type keywordSet struct {
	sport    Type
	keywords []string
}

// classifiers are checked in order; the first set with a matching keyword
// wins. Soccer is the fallback and has no entry.
var classifiers = []keywordSet{ //nolint:gochecknoglobals // immutable classification table
	{sport: MMA, keywords: []string{"mma", "ufc", "bellator", "mixed martial", "pfl", "one championship"}},
	{sport: Basketball, keywords: []string{"basketball", "nba", "wnba", "euroleague", "ncaab"}},
	{sport: Football, keywords: []string{"american football", "nfl", "ncaaf", "college football"}},
	{sport: Hockey, keywords: []string{"hockey", "nhl", "khl", "ahl"}},
}

// Classify maps a free-text sport identifier to a canonical Type.
// Matching is case-insensitive substring matching; unmatched input is Soccer.
func Classify(raw string) Type {
	folded := cases.Fold().String(strings.TrimSpace(raw))
	if folded == "" {
		return Soccer
	}
	for _, c := range classifiers {
		for _, kw := range c.keywords {
			if strings.Contains(folded, kw) {
				return c.sport
			}
		}
	}
	return Soccer
}
