package telegram

import (
	"fmt"
	"strings"

	"github.com/codegangsta/cardfetcher/internal/render"
)

const parseModeMarkdownV2 = "MarkdownV2"

// MarkdownV2 special characters that need escaping
const markdownV2SpecialChars = `_*[]()~` + "`" + `>#+-=|{}.!`

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	var result strings.Builder
	for _, r := range text {
		if strings.ContainsRune(markdownV2SpecialChars, r) {
			result.WriteRune('\\')
		}
		result.WriteRune(r)
	}
	return result.String()
}

// escapeLinkURL escapes the target of an inline link (only ) and \)
func escapeLinkURL(url string) string {
	url = strings.ReplaceAll(url, "\\", "\\\\")
	url = strings.ReplaceAll(url, ")", "\\)")
	return url
}

// FormatLink renders a MarkdownV2 inline link
func FormatLink(title, url string) string {
	return fmt.Sprintf("[%s](%s)", escapeMarkdownV2(title), escapeLinkURL(url))
}

// FormatImageCaption is the photo caption for an image payload: the title
// linked to the card's page
func FormatImageCaption(img render.Image) string {
	return FormatLink(img.Title, img.URL)
}

// FormatLegalityTable renders the title in bold followed by one line per format
func FormatLegalityTable(table render.LegalityTable) string {
	var sb strings.Builder
	sb.WriteString("*")
	sb.WriteString(escapeMarkdownV2(table.Title))
	sb.WriteString("*")
	for _, line := range table.Lines {
		sb.WriteString("\n")
		sb.WriteString(escapeMarkdownV2(line))
	}
	return sb.String()
}
