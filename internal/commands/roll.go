package commands

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
)

const (
	defaultSides = 20
	maxSides     = 1_000_000
)

// RollCommand handles !roll - rolls a die with the given number of sides
type RollCommand struct {
	intN func(n int) int // returns a value in [0, n)
}

// NewRollCommand creates a new roll command
func NewRollCommand() *RollCommand {
	return &RollCommand{intN: rand.IntN}
}

func (c *RollCommand) Name() string {
	return "roll"
}

func (c *RollCommand) Execute(ctx context.Context, chatID int64, args string) (*Response, error) {
	sides := defaultSides
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n < 1 || n > maxSides {
			return &Response{
				Text:   fmt.Sprintf("Usage: !roll <sides> (1-%d)", maxSides),
				Silent: true,
			}, nil
		}
		sides = n
	}

	result := c.intN(sides) + 1
	slog.Debug("roll", "chat_id", chatID, "sides", sides, "result", result)

	return &Response{
		Text:   fmt.Sprintf("Rolled a d%d: %d", sides, result),
		Silent: false,
	}, nil
}
