// Package commands provides a router for handling cardfetcher chat commands
package commands

import (
	"context"
	"sort"
	"strings"

	"github.com/codegangsta/cardfetcher/internal/metrics"
)

// Prefixes that mark a message as a command
const Prefixes = "!/"

// Response represents the result of executing a command
type Response struct {
	Text   string
	Silent bool // If true, don't play notification sound
}

// Command defines the interface for a chat command
type Command interface {
	// Name returns the command name without the prefix (e.g., "kw")
	Name() string
	// Execute runs the command and returns a response
	Execute(ctx context.Context, chatID int64, args string) (*Response, error)
}

// Router dispatches commands to their handlers
type Router struct {
	commands map[string]Command
}

// NewRouter creates a new command router
func NewRouter() *Router {
	return &Router{
		commands: make(map[string]Command),
	}
}

// Register adds a command to the router
func (r *Router) Register(cmd Command) {
	r.commands[cmd.Name()] = cmd
}

// Lookup returns the command for a given name, or nil if not found
func (r *Router) Lookup(name string) Command {
	name = strings.TrimLeft(name, Prefixes)
	return r.commands[strings.ToLower(name)]
}

// Names returns the registered command names in sorted order
func (r *Router) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs the command in text if there is one. ok is false when text
// is not a registered command.
func (r *Router) Dispatch(ctx context.Context, chatID int64, text string) (resp *Response, ok bool, err error) {
	name, args := ParseCommand(text)
	if name == "" {
		return nil, false, nil
	}
	cmd := r.Lookup(name)
	if cmd == nil {
		return nil, false, nil
	}

	metrics.CommandsTotal.WithLabelValues(cmd.Name()).Inc()
	resp, err = cmd.Execute(ctx, chatID, args)
	return resp, true, err
}

// ParseCommand extracts the command name and args from a message.
// Returns empty string if not a command. Telegram's "/cmd@botname" form is
// accepted.
func ParseCommand(text string) (name string, args string) {
	text = strings.TrimSpace(text)
	if text == "" || !strings.ContainsRune(Prefixes, rune(text[0])) {
		return "", ""
	}
	parts := strings.SplitN(text, " ", 2)
	name = strings.ToLower(parts[0][1:])
	if at := strings.Index(name, "@"); at >= 0 {
		name = name[:at]
	}
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}
	return name, args
}
