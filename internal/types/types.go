// Package types contains shared types used across packages
package types

import (
	"fmt"
	"strings"
)

// Target is the kind of answer a query asks for
type Target int

const (
	TargetGatherer Target = iota
	TargetEDHRec
	TargetLegalities
	TargetPricing
)

// Targets lists every target in bracket-family order
var Targets = []Target{TargetGatherer, TargetEDHRec, TargetLegalities, TargetPricing}

func (t Target) String() string {
	switch t {
	case TargetGatherer:
		return "gatherer"
	case TargetEDHRec:
		return "edhrec"
	case TargetLegalities:
		return "legalities"
	case TargetPricing:
		return "pricing"
	}
	return fmt.Sprintf("target(%d)", int(t))
}

// ParseTarget maps a config or log name back to a Target
func ParseTarget(s string) (Target, error) {
	for _, t := range Targets {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown target %q", s)
}

// LegalityStatus is a format legality as reported by Scryfall
type LegalityStatus string

const (
	Legal      LegalityStatus = "legal"
	NotLegal   LegalityStatus = "not_legal"
	Restricted LegalityStatus = "restricted"
	Banned     LegalityStatus = "banned"
)

// Known reports whether the status is part of the closed vocabulary
func (s LegalityStatus) Known() bool {
	switch s {
	case Legal, NotLegal, Restricted, Banned:
		return true
	}
	return false
}

// Display renders the status as human text ("not_legal" -> "not legal").
// Unknown statuses pass through with the same substitution.
func (s LegalityStatus) Display() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// Legality is one format's status for a card
type Legality struct {
	Format string
	Status LegalityStatus
}

// Candidate is one card record returned by the card source.
// Name is never empty; every other field may be.
type Candidate struct {
	Name        string
	ImageURL    string
	RelatedURLs map[Target]string // only gatherer and edhrec are populated
	Legalities  []Legality        // source order
	PurchaseURL string
}

// Query is a single bracket token pulled from a chat message
type Query struct {
	Raw    string // text sent to the card source, qualifiers included
	Name   string // card-name portion used for matching
	Target Target
}

// NewQuery trims raw and splits off search qualifiers such as "set:c21"
// so only the card name takes part in matching.
func NewQuery(raw string, target Target) Query {
	raw = strings.TrimSpace(raw)

	var name []string
	for _, field := range strings.Fields(raw) {
		if strings.Contains(field, ":") {
			continue
		}
		name = append(name, field)
	}

	q := Query{Raw: raw, Name: strings.Join(name, " "), Target: target}
	if q.Name == "" {
		q.Name = raw
	}
	return q
}
