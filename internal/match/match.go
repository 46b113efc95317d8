// Package match picks the single best card for a user-typed name.
//
// Two policies exist. Strict keeps only candidates whose Jaro-Winkler
// similarity to the query is above a threshold and then takes the smallest
// Levenshtein distance among them. Lenient skips the similarity filter and
// always returns the closest name by edit distance. Both compare
// lower-cased names and resolve ties by candidate order.
package match

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/codegangsta/cardfetcher/internal/types"
)

// DefaultThreshold is the Jaro-Winkler score a name must exceed under Strict
const DefaultThreshold float32 = 0.8

// ErrNoMatch is returned when no candidate is acceptable
var ErrNoMatch = errors.New("no matching card")

// Policy selects how candidates are chosen
type Policy int

const (
	Strict Policy = iota
	Lenient
)

func (p Policy) String() string {
	switch p {
	case Strict:
		return "strict"
	case Lenient:
		return "lenient"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// ParsePolicy maps a config value to a Policy
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict", "":
		return Strict, nil
	case "lenient":
		return Lenient, nil
	}
	return 0, fmt.Errorf("unknown match policy %q", s)
}

// Matcher resolves queries with a fixed policy
type Matcher struct {
	Policy    Policy
	Threshold float32 // only used by Strict
}

// New returns a Matcher for p with the default threshold
func New(p Policy) Matcher {
	return Matcher{Policy: p, Threshold: DefaultThreshold}
}

// Resolve returns the candidate that best matches query.
// It is pure: the same inputs always give the same candidate.
func (m Matcher) Resolve(query string, candidates []types.Candidate) (types.Candidate, error) {
	var idx int
	switch m.Policy {
	case Lenient:
		idx = pickLenient(query, candidates)
	default:
		idx = pickStrict(query, candidates, m.Threshold)
	}

	if idx < 0 {
		return types.Candidate{}, ErrNoMatch
	}
	return candidates[idx], nil
}

func pickStrict(query string, candidates []types.Candidate, threshold float32) int {
	q := strings.ToLower(query)
	return nearest(q, candidates, func(name string) bool {
		return edlib.JaroWinklerSimilarity(q, name) > threshold
	})
}

func pickLenient(query string, candidates []types.Candidate) int {
	return nearest(strings.ToLower(query), candidates, func(string) bool { return true })
}

// nearest returns the index of the kept candidate with the smallest edit
// distance to q, or -1 when none is kept. q must already be lower-cased.
func nearest(q string, candidates []types.Candidate, keep func(name string) bool) int {
	best, bestDist := -1, 0
	for i, c := range candidates {
		name := strings.ToLower(c.Name)
		if !keep(name) {
			continue
		}
		d := edlib.LevenshteinDistance(q, name)
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Policies holds the matcher used for each target
type Policies struct {
	Default   Matcher
	PerTarget map[types.Target]Matcher
}

// For returns the matcher configured for target
func (p Policies) For(target types.Target) Matcher {
	if m, ok := p.PerTarget[target]; ok {
		return m
	}
	return p.Default
}
