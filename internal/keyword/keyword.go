// Package keyword answers rules-keyword lookups from a static table
package keyword

import (
	"fmt"
	"os"

	"github.com/hbollon/go-edlib"
	"gopkg.in/yaml.v3"
)

// MaxDistance is the largest edit distance accepted for a fallback match
const MaxDistance = 4

// EmptyQueryText is returned for a blank query
const EmptyQueryText = "You must input a valid keyword."

// Outcome describes how a lookup was answered
type Outcome string

const (
	OutcomeResolved Outcome = "resolved"
	OutcomeFallback Outcome = "fallback"
	OutcomeNotFound Outcome = "not_found"
	OutcomeEmpty    Outcome = "empty"
)

// Entry is a keyword and its rules text
type Entry struct {
	Keyword    string
	Definition string
}

// Result is the answer to a lookup
type Result struct {
	Text    string
	Key     string // matched keyword, empty when nothing matched
	Outcome Outcome
}

// Table is an ordered, read-only keyword table. It is built once at startup
// and safe for concurrent lookups.
type Table struct {
	keys []string
	defs map[string]string
}

// NewTable builds a table; entries keep the given order and later
// duplicates are ignored.
func NewTable(entries ...Entry) *Table {
	t := &Table{defs: make(map[string]string, len(entries))}
	for _, e := range entries {
		if _, dup := t.defs[e.Keyword]; dup {
			continue
		}
		t.keys = append(t.keys, e.Keyword)
		t.defs[e.Keyword] = e.Definition
	}
	return t
}

// Load reads a YAML or JSON mapping of keyword to rules text. Keys keep
// their file order, which decides fallback matching.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keywords file: %w", err)
	}

	entries, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing keywords file: %w", err)
	}
	return NewTable(entries...), nil
}

func parse(data []byte) ([]Entry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of keyword to text", root.Line)
	}

	seen := make(map[string]bool, len(root.Content)/2)
	entries := make([]Entry, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: keyword and text must be plain strings", k.Line)
		}
		if seen[k.Value] {
			return nil, fmt.Errorf("line %d: duplicate keyword %q", k.Line, k.Value)
		}
		seen[k.Value] = true
		entries = append(entries, Entry{Keyword: k.Value, Definition: v.Value})
	}
	return entries, nil
}

// Len returns the number of keywords
func (t *Table) Len() int {
	return len(t.keys)
}

// Lookup resolves query: an exact key wins, otherwise the first key in table
// order within MaxDistance edits. The first acceptable key is used, not the
// closest one.
func (t *Table) Lookup(query string) Result {
	if query == "" {
		return Result{Text: EmptyQueryText, Outcome: OutcomeEmpty}
	}

	if def, ok := t.defs[query]; ok {
		return Result{Text: def, Key: query, Outcome: OutcomeResolved}
	}

	for _, key := range t.keys {
		if edlib.LevenshteinDistance(key, query) <= MaxDistance {
			return Result{Text: t.defs[key], Key: key, Outcome: OutcomeFallback}
		}
	}

	return Result{
		Text:    fmt.Sprintf("Keyword '%s' not found", query),
		Outcome: OutcomeNotFound,
	}
}

// Resolve returns only the text of Lookup
func (t *Table) Resolve(query string) string {
	return t.Lookup(query).Text
}
