// Package dispatch answers every card token in a chat message.
//
// Each token becomes its own query chain (fetch, match, render, reply) run
// concurrently with its siblings. A chain owns all of its data, replies
// exactly once, and turns any failure into a text reply so one bad token
// never affects the others.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/codegangsta/cardfetcher/internal/extract"
	"github.com/codegangsta/cardfetcher/internal/match"
	"github.com/codegangsta/cardfetcher/internal/metrics"
	"github.com/codegangsta/cardfetcher/internal/render"
	"github.com/codegangsta/cardfetcher/internal/types"
)

// User-facing failure texts
const (
	NotFoundText = "Unable to find the card as searched."
	noResultsFmt = "Unable to retrieve information for %q"
	failureFmt   = "Something went wrong while searching for %q. Please try again."
)

// Source looks up candidate cards for a search string
type Source interface {
	Search(ctx context.Context, query string) ([]types.Candidate, error)
}

// ReplyFunc delivers one payload to the chat the message came from
type ReplyFunc func(render.Payload)

// Dispatcher runs query chains
type Dispatcher struct {
	source   Source
	policies match.Policies
	logger   *slog.Logger
}

// New creates a Dispatcher
func New(source Source, policies match.Policies, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		source:   source,
		policies: policies,
		logger:   logger,
	}
}

// Handle extracts the queries in text and answers each through reply.
// It returns once every query has replied and reports how many ran.
func (d *Dispatcher) Handle(ctx context.Context, text string, reply ReplyFunc) int {
	queries := extract.Queries(text)
	if len(queries) == 0 {
		return 0
	}

	// Chains never return errors, so the group only waits.
	var g errgroup.Group
	for _, q := range queries {
		g.Go(func() error {
			d.run(ctx, q, reply)
			return nil
		})
	}
	_ = g.Wait()

	return len(queries)
}

func (d *Dispatcher) run(ctx context.Context, q types.Query, reply ReplyFunc) {
	logger := d.logger.With(
		"query_id", uuid.NewString(),
		"query", q.Raw,
		"target", q.Target.String(),
	)
	start := time.Now()

	var payload render.Payload
	outcome := "failed"
	defer func() {
		if r := recover(); r != nil {
			logger.Error("query panicked", "panic", r)
			payload = render.PlainText{Text: fmt.Sprintf(failureFmt, q.Raw)}
			outcome = "failed"
		}
		metrics.QueriesTotal.WithLabelValues(q.Target.String(), outcome).Inc()
		metrics.QueryDuration.WithLabelValues(q.Target.String()).Observe(time.Since(start).Seconds())
		reply(payload)
	}()

	payload, outcome = d.resolve(ctx, q, logger)
}

// resolve runs one chain and always produces a payload to send
func (d *Dispatcher) resolve(ctx context.Context, q types.Query, logger *slog.Logger) (render.Payload, string) {
	candidates, err := d.source.Search(ctx, q.Raw)
	if err != nil {
		logger.Warn("card search failed", "error", err)
		return render.PlainText{Text: fmt.Sprintf(failureFmt, q.Raw)}, "failed"
	}
	if len(candidates) == 0 {
		logger.Info("no candidates")
		return render.PlainText{Text: fmt.Sprintf(noResultsFmt, q.Raw)}, "no_candidates"
	}

	matcher := d.policies.For(q.Target)
	card, err := matcher.Resolve(q.Name, candidates)
	if err != nil {
		logger.Info("no acceptable match",
			"policy", matcher.Policy.String(),
			"candidates", len(candidates),
		)
		return render.PlainText{Text: NotFoundText}, "no_match"
	}

	payload, err := render.Render(card, q.Target)
	if err != nil {
		if errors.Is(err, render.ErrMissingField) {
			logger.Info("matched card cannot be rendered", "card", card.Name, "error", err)
			return render.PlainText{Text: NotFoundText}, "missing_field"
		}
		logger.Error("render failed", "card", card.Name, "error", err)
		return render.PlainText{Text: fmt.Sprintf(failureFmt, q.Raw)}, "failed"
	}

	logger.Debug("query resolved", "card", card.Name, "candidates", len(candidates))
	return payload, "ok"
}
