// Package render turns a resolved card into the payload the chat adapter sends
package render

import (
	"errors"
	"fmt"

	"github.com/codegangsta/cardfetcher/internal/types"
)

// ErrMissingField means the card lacks data the requested target needs
var ErrMissingField = errors.New("card is missing a required field")

// Payload is one of Image, LegalityTable or PlainText
type Payload interface {
	payload()
}

// Image is a titled link with a card picture
type Image struct {
	Title    string
	URL      string
	ImageURL string
}

// LegalityTable is a title followed by one "<format>: <status>" line per format
type LegalityTable struct {
	Title string
	Lines []string
}

// PlainText is sent as-is
type PlainText struct {
	Text string
}

func (Image) payload()         {}
func (LegalityTable) payload() {}
func (PlainText) payload()     {}

// Render builds the payload for c and target
func Render(c types.Candidate, target types.Target) (Payload, error) {
	switch target {
	case types.TargetGatherer:
		return pageImage(c, target, "Gatherer Page")
	case types.TargetEDHRec:
		return pageImage(c, target, "EDHREC Page")
	case types.TargetLegalities:
		return legalities(c), nil
	case types.TargetPricing:
		if c.PurchaseURL == "" {
			return nil, missing("purchase_uris.tcgplayer")
		}
		if c.ImageURL == "" {
			return nil, missing("image_uris")
		}
		return Image{
			Title:    c.Name + " - TCGPlayer pricing",
			URL:      c.PurchaseURL,
			ImageURL: c.ImageURL,
		}, nil
	}
	return nil, fmt.Errorf("unsupported target %v", target)
}

func pageImage(c types.Candidate, target types.Target, suffix string) (Payload, error) {
	url := c.RelatedURLs[target]
	if url == "" {
		return nil, missing("related_uris." + target.String())
	}
	if c.ImageURL == "" {
		return nil, missing("image_uris")
	}
	return Image{
		Title:    c.Name + " - " + suffix,
		URL:      url,
		ImageURL: c.ImageURL,
	}, nil
}

func legalities(c types.Candidate) LegalityTable {
	lines := make([]string, 0, len(c.Legalities))
	for _, l := range c.Legalities {
		lines = append(lines, fmt.Sprintf("%s: %s", l.Format, l.Status.Display()))
	}
	return LegalityTable{Title: c.Name + " - Legalities", Lines: lines}
}

func missing(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}
