package commands

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegangsta/cardfetcher/internal/keyword"
	"github.com/codegangsta/cardfetcher/internal/metrics"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input    string
		wantName string
		wantArgs string
	}{
		{"/help", "help", ""},
		{"!help", "help", ""},
		{"!KW flying", "kw", "flying"},
		{"/roll@cardfetcher_bot 6", "roll", "6"},
		{"!kw   first strike  ", "kw", "first strike"},
		{"  !roll", "roll", ""},
		{"hello", "", ""},
		{"[[Sol Ring]]", "", ""},
		{"", "", ""},
		{"   ", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			name, args := ParseCommand(tt.input)
			if name != tt.wantName {
				t.Errorf("ParseCommand(%q) name = %q, want %q", tt.input, name, tt.wantName)
			}
			if args != tt.wantArgs {
				t.Errorf("ParseCommand(%q) args = %q, want %q", tt.input, args, tt.wantArgs)
			}
		})
	}
}

func TestRouterLookup(t *testing.T) {
	r := NewRouter()
	r.Register(NewHelpCommand())
	r.Register(NewRollCommand())

	assert.NotNil(t, r.Lookup("help"))
	assert.NotNil(t, r.Lookup("!HELP"))
	assert.NotNil(t, r.Lookup("/roll"))
	assert.Nil(t, r.Lookup("sessions"))
	assert.Equal(t, []string{"help", "roll"}, r.Names())
}

func TestRouterDispatch(t *testing.T) {
	r := NewRouter()
	r.Register(NewHelpCommand())
	ctx := context.Background()

	before := testutil.ToFloat64(metrics.CommandsTotal.WithLabelValues("help"))

	resp, ok, err := r.Dispatch(ctx, 1, "!help")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, resp.Text, "[[card]]")
	assert.Contains(t, resp.Text, "!kw")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.CommandsTotal.WithLabelValues("help")))

	_, ok, err = r.Dispatch(ctx, 1, "!unknown")
	require.NoError(t, err)
	assert.False(t, ok, "unregistered command should not be handled")

	_, ok, _ = r.Dispatch(ctx, 1, "look up [[Sol Ring]]")
	assert.False(t, ok, "plain text should not be handled")
}

func TestKeywordCommand(t *testing.T) {
	table := keyword.NewTable(
		keyword.Entry{Keyword: "flying", Definition: "Can't be blocked except by flying or reach."},
		keyword.Entry{Keyword: "trample", Definition: "Excess damage goes through."},
	)
	cmd := NewKeywordCommand(table)
	ctx := context.Background()

	tests := []struct {
		name    string
		args    string
		want    string
		outcome keyword.Outcome
	}{
		{"exact", "flying", "Can't be blocked except by flying or reach.", keyword.OutcomeResolved},
		{"typo", "tramlpe", "Excess damage goes through.", keyword.OutcomeFallback},
		{"unknown", "hexproof", "Keyword 'hexproof' not found", keyword.OutcomeNotFound},
		{"empty", "", keyword.EmptyQueryText, keyword.OutcomeEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := metrics.KeywordLookupsTotal.WithLabelValues(string(tt.outcome))
			before := testutil.ToFloat64(counter)

			resp, err := cmd.Execute(ctx, 1, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Text)
			assert.Equal(t, before+1, testutil.ToFloat64(counter))
		})
	}
}

func TestRollCommand(t *testing.T) {
	ctx := context.Background()

	var gotN int
	cmd := &RollCommand{intN: func(n int) int {
		gotN = n
		return n - 1
	}}

	tests := []struct {
		name      string
		args      string
		wantSides int
		want      string
	}{
		{"default d20", "", 20, "Rolled a d20: 20"},
		{"d6", "6", 6, "Rolled a d6: 6"},
		{"d1", "1", 1, "Rolled a d1: 1"},
		{"max", "1000000", 1_000_000, "Rolled a d1000000: 1000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := cmd.Execute(ctx, 1, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSides, gotN)
			assert.Equal(t, tt.want, resp.Text)
		})
	}
}

func TestRollCommandInvalid(t *testing.T) {
	cmd := &RollCommand{intN: func(n int) int {
		t.Fatalf("intN called for invalid input")
		return 0
	}}

	for _, args := range []string{"0", "-3", "abc", "1000001", "2d6"} {
		t.Run(args, func(t *testing.T) {
			resp, err := cmd.Execute(context.Background(), 1, args)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(resp.Text, "Usage:"), "got %q", resp.Text)
		})
	}
}

func TestRollCommandRange(t *testing.T) {
	cmd := NewRollCommand()
	for i := 0; i < 200; i++ {
		resp, err := cmd.Execute(context.Background(), 1, "3")
		require.NoError(t, err)
		assert.Contains(t, []string{"Rolled a d3: 1", "Rolled a d3: 2", "Rolled a d3: 3"}, resp.Text)
	}
}
