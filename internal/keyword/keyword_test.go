package keyword

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLookup(t *testing.T) {
	table := NewTable(
		Entry{"flying", "def"},
		Entry{"flash", "You may cast this spell any time you could cast an instant."},
		Entry{"trample", "Excess damage goes to the player."},
	)

	tests := []struct {
		name    string
		query   string
		want    string
		key     string
		outcome Outcome
	}{
		{"empty query", "", EmptyQueryText, "", OutcomeEmpty},
		{"exact", "flying", "def", "flying", OutcomeResolved},
		{"typo", "flyign", "def", "flying", OutcomeFallback},
		{"too far", "zzz", "Keyword 'zzz' not found", "", OutcomeNotFound},
		// "flasj" is 1 edit from flash but flying comes first and is within 4.
		{"first under threshold wins", "flasj", "def", "flying", OutcomeFallback},
		{"case-sensitive exact", "Trample", "Excess damage goes to the player.", "trample", OutcomeFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table.Lookup(tt.query)
			assert.Equal(t, tt.want, got.Text)
			assert.Equal(t, tt.key, got.Key)
			assert.Equal(t, tt.outcome, got.Outcome)
		})
	}
}

func TestResolveEmptyQueryIgnoresTable(t *testing.T) {
	assert.Equal(t, EmptyQueryText, NewTable().Resolve(""))
	assert.Equal(t, EmptyQueryText, NewTable(Entry{"", "blank"}).Resolve(""))
}

func TestResolveSingleEntry(t *testing.T) {
	assert.Equal(t, "v", NewTable(Entry{"k", "v"}).Resolve("k"))
	assert.Equal(t, "def", NewTable(Entry{"flying", "def"}).Resolve("flyign"))
	assert.Equal(t, "Keyword 'zzz' not found", NewTable(Entry{"flying", "def"}).Resolve("zzz"))
}

func TestNewTableSkipsDuplicates(t *testing.T) {
	table := NewTable(Entry{"a", "first"}, Entry{"a", "second"})
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, "first", table.Resolve("a"))
}

func TestLoadYAMLKeepsOrder(t *testing.T) {
	path := writeFile(t, "keywords.yaml", `
flash: "flash text"
flying: "flying text"
`)

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "flying text", table.Resolve("flying"))
	assert.Equal(t, "flash text", table.Resolve("flyin"))
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "keywords.json", `{
  "trample": "trample text",
  "deathtouch": "deathtouch text"
}`)

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "deathtouch text", table.Resolve("deathtuch"))
}

func TestLoadEmptyFile(t *testing.T) {
	table, err := Load(writeFile(t, "keywords.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, "Keyword 'flying' not found", table.Resolve("flying"))
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not a mapping", "- flying\n- trample\n"},
		{"nested value", "flying:\n  text: nope\n"},
		{"duplicate key", "flying: a\nflying: b\n"},
		{"invalid yaml", "flying: [unterminated\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "keywords.yaml", tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/keywords.yaml")
	assert.Error(t, err)
}
