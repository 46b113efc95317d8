// Package scryfall fetches card candidates from the Scryfall search API
package scryfall

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/codegangsta/cardfetcher/internal/metrics"
	"github.com/codegangsta/cardfetcher/internal/types"
)

const (
	DefaultBaseURL   = "https://api.scryfall.com"
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "cardfetcher/1.0"
)

// ErrUnexpectedStatus is returned for non-2xx responses other than 404
var ErrUnexpectedStatus = errors.New("scryfall returned unexpected status")

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client searches Scryfall
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
	logger    *slog.Logger
}

// NewClient creates a Scryfall client
func NewClient(opts Options) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		client:    opts.HTTPClient,
		logger:    opts.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.client = &http.Client{Timeout: timeout}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

type searchResponse struct {
	Data []cardJSON `json:"data"`
}

type cardJSON struct {
	Name         string            `json:"name"`
	ImageURIs    *imagesJSON       `json:"image_uris"`
	CardFaces    []faceJSON        `json:"card_faces"`
	RelatedURIs  map[string]string `json:"related_uris"`
	PurchaseURIs map[string]string `json:"purchase_uris"`
	Legalities   legalitiesJSON    `json:"legalities"`
}

type imagesJSON struct {
	Normal string `json:"normal"`
	Large  string `json:"large"`
	PNG    string `json:"png"`
}

type faceJSON struct {
	ImageURIs *imagesJSON `json:"image_uris"`
}

// legalitiesJSON keeps the formats in the order Scryfall sends them
type legalitiesJSON []types.Legality

func (l *legalitiesJSON) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("legalities: expected object, got %v", tok)
	}

	var out legalitiesJSON
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		format, _ := keyTok.(string)

		var status string
		if err := dec.Decode(&status); err != nil {
			return fmt.Errorf("legalities[%s]: %w", format, err)
		}
		out = append(out, types.Legality{Format: format, Status: types.LegalityStatus(status)})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*l = out
	return nil
}

// Search queries /cards/search. A 404 or an absent data array yields no
// candidates; any other failure is an error.
func (c *Client) Search(ctx context.Context, query string) ([]types.Candidate, error) {
	reqURL := fmt.Sprintf("%s/cards/search?q=%s", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.SourceRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("searching scryfall: %w", err)
	}
	defer resp.Body.Close()
	metrics.SourceRequestDuration.Observe(time.Since(start).Seconds())
	metrics.SourceRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	c.logger.Debug("scryfall search",
		"query", query,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding scryfall response: %w", err)
	}

	candidates := make([]types.Candidate, 0, len(body.Data))
	for _, sc := range body.Data {
		if strings.TrimSpace(sc.Name) == "" {
			continue
		}
		candidates = append(candidates, convert(sc))
	}
	return candidates, nil
}

func convert(sc cardJSON) types.Candidate {
	c := types.Candidate{
		Name:        sc.Name,
		ImageURL:    imageURL(sc),
		RelatedURLs: make(map[types.Target]string, 2),
		Legalities:  []types.Legality(sc.Legalities),
		PurchaseURL: sc.PurchaseURIs["tcgplayer"],
	}
	if u := sc.RelatedURIs["gatherer"]; u != "" {
		c.RelatedURLs[types.TargetGatherer] = u
	}
	if u := sc.RelatedURIs["edhrec"]; u != "" {
		c.RelatedURLs[types.TargetEDHRec] = u
	}
	return c
}

// imageURL prefers the card's own images and falls back to the first face
// that has any, which is how double-faced cards are returned.
func imageURL(sc cardJSON) string {
	if u := sc.ImageURIs.best(); u != "" {
		return u
	}
	for _, f := range sc.CardFaces {
		if u := f.ImageURIs.best(); u != "" {
			return u
		}
	}
	return ""
}

func (i *imagesJSON) best() string {
	if i == nil {
		return ""
	}
	switch {
	case i.PNG != "":
		return i.PNG
	case i.Large != "":
		return i.Large
	}
	return i.Normal
}
