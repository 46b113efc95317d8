package commands

import "context"

const helpText = `Card lookups (anywhere in a message):
[[card]] - Gatherer page and image
{{card}} - EDHREC page and image
<<card>> - format legalities
((card)) - TCGPlayer pricing

Scryfall qualifiers work too, e.g. [[Sol Ring set:c21]]

Commands:
!help - show this message
!kw <keyword> - rules text for a keyword
!roll <sides> - roll a die (default d20)`

// HelpCommand handles !help - lists the bot's syntax
type HelpCommand struct{}

// NewHelpCommand creates a new help command
func NewHelpCommand() *HelpCommand {
	return &HelpCommand{}
}

func (c *HelpCommand) Name() string {
	return "help"
}

func (c *HelpCommand) Execute(ctx context.Context, chatID int64, args string) (*Response, error) {
	return &Response{
		Text:   helpText,
		Silent: true,
	}, nil
}
