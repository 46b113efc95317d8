// Package extract pulls bracket-delimited card names out of chat messages
package extract

import (
	"strings"

	"github.com/codegangsta/cardfetcher/internal/types"
)

// Family is one bracket syntax and the target it asks for
type Family struct {
	Prefix string
	Suffix string
	Target types.Target
}

// Families are scanned independently against every message
var Families = []Family{
	{Prefix: "[[", Suffix: "]]", Target: types.TargetGatherer},
	{Prefix: "{{", Suffix: "}}", Target: types.TargetEDHRec},
	{Prefix: "<<", Suffix: ">>", Target: types.TargetLegalities},
	{Prefix: "((", Suffix: "))", Target: types.TargetPricing},
}

// Between returns every substring enclosed by prefix and suffix, left to right.
// Scanning stops at the first prefix with no suffix after it; a lone
// suffix is never matched.
func Between(text, prefix, suffix string) []string {
	if prefix == "" || suffix == "" {
		return nil
	}

	var out []string
	for {
		start := strings.Index(text, prefix)
		if start < 0 {
			return out
		}
		rest := text[start+len(prefix):]

		end := strings.Index(rest, suffix)
		if end < 0 {
			return out
		}

		out = append(out, rest[:end])
		text = rest[end+len(suffix):]
	}
}

// Queries runs every family over text and returns the non-blank tokens as
// queries, grouped by family in Families order.
func Queries(text string) []types.Query {
	var queries []types.Query
	for _, f := range Families {
		for _, tok := range Between(text, f.Prefix, f.Suffix) {
			if strings.TrimSpace(tok) == "" {
				continue
			}
			queries = append(queries, types.NewQuery(tok, f.Target))
		}
	}
	return queries
}

// HasTokens reports whether text contains at least one well-formed token
func HasTokens(text string) bool {
	return len(Queries(text)) > 0
}
