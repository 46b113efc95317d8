package commands

import (
	"context"
	"log/slog"

	"github.com/codegangsta/cardfetcher/internal/keyword"
	"github.com/codegangsta/cardfetcher/internal/metrics"
)

// KeywordCommand handles !kw - looks up rules text for a keyword
type KeywordCommand struct {
	table *keyword.Table
}

// NewKeywordCommand creates a new kw command
func NewKeywordCommand(table *keyword.Table) *KeywordCommand {
	return &KeywordCommand{table: table}
}

func (c *KeywordCommand) Name() string {
	return "kw"
}

func (c *KeywordCommand) Execute(ctx context.Context, chatID int64, args string) (*Response, error) {
	res := c.table.Lookup(args)
	metrics.KeywordLookupsTotal.WithLabelValues(string(res.Outcome)).Inc()

	slog.Info("keyword lookup",
		"chat_id", chatID,
		"query", args,
		"matched", res.Key,
		"outcome", res.Outcome,
	)

	return &Response{
		Text:   res.Text,
		Silent: false,
	}, nil
}
