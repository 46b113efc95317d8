package scryfall

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegangsta/cardfetcher/internal/types"
)

const solRingJSON = `{
  "object": "list",
  "total_cards": 2,
  "has_more": false,
  "data": [
    {
      "object": "card",
      "name": "Sol Ring",
      "image_uris": {"small": "https://i/s", "normal": "https://i/n", "large": "https://i/l", "png": "https://i/p"},
      "legalities": {"standard": "not_legal", "commander": "legal", "vintage": "restricted", "duel": "banned"},
      "related_uris": {"gatherer": "https://g/1", "edhrec": "https://e/1", "tcgplayer_decks": "https://d/1"},
      "purchase_uris": {"tcgplayer": "https://t/1", "cardmarket": "https://c/1"}
    },
    {
      "object": "card",
      "name": "Delver of Secrets // Insectile Aberration",
      "card_faces": [
        {"name": "Delver of Secrets", "image_uris": {"normal": "https://i/front"}},
        {"name": "Insectile Aberration", "image_uris": {"normal": "https://i/back"}}
      ],
      "legalities": {"modern": "legal"},
      "related_uris": {"gatherer": "https://g/2"}
    },
    {"object": "card", "name": ""}
  ]
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return NewClient(Options{BaseURL: ts.URL, HTTPClient: ts.Client(), UserAgent: "test-agent"})
}

func TestSearch(t *testing.T) {
	var gotQuery, gotPath, gotAgent string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(solRingJSON))
	})

	cards, err := client.Search(context.Background(), "Sol Ring set:c21")
	require.NoError(t, err)

	assert.Equal(t, "/cards/search", gotPath)
	assert.Equal(t, "Sol Ring set:c21", gotQuery)
	assert.Equal(t, "test-agent", gotAgent)

	require.Len(t, cards, 2, "records without a name are dropped")

	sol := cards[0]
	assert.Equal(t, "Sol Ring", sol.Name)
	assert.Equal(t, "https://i/p", sol.ImageURL)
	assert.Equal(t, "https://t/1", sol.PurchaseURL)
	assert.Equal(t, map[types.Target]string{
		types.TargetGatherer: "https://g/1",
		types.TargetEDHRec:   "https://e/1",
	}, sol.RelatedURLs)
	assert.Equal(t, []types.Legality{
		{Format: "standard", Status: types.NotLegal},
		{Format: "commander", Status: types.Legal},
		{Format: "vintage", Status: types.Restricted},
		{Format: "duel", Status: types.Banned},
	}, sol.Legalities)

	delver := cards[1]
	assert.Equal(t, "https://i/front", delver.ImageURL)
	assert.Empty(t, delver.PurchaseURL)
	assert.NotContains(t, delver.RelatedURLs, types.TargetEDHRec)
}

func TestSearchNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"object":"error","code":"not_found","status":404}`))
	})

	cards, err := client.Search(context.Background(), "Nonexistent Card")
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestSearchEmptyOrAbsentData(t *testing.T) {
	for _, body := range []string{`{"data": []}`, `{"object": "list"}`, `{"data": null}`} {
		t.Run(body, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			})

			cards, err := client.Search(context.Background(), "Sol Ring")
			require.NoError(t, err)
			assert.Empty(t, cards)
		})
	}
}

func TestSearchServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Search(context.Background(), "Sol Ring")
	require.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "503")
}

func TestSearchBadJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [`))
	})

	_, err := client.Search(context.Background(), "Sol Ring")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnexpectedStatus)
}

func TestSearchBadLegalities(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [{"name": "Sol Ring", "legalities": ["legal"]}]}`))
	})

	_, err := client.Search(context.Background(), "Sol Ring")
	assert.Error(t, err)
}

func TestSearchTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	client := NewClient(Options{BaseURL: ts.URL})
	_, err := client.Search(context.Background(), "Sol Ring")
	assert.Error(t, err)
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Options{})
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, DefaultUserAgent, c.userAgent)
	assert.Equal(t, DefaultTimeout, c.client.Timeout)
	assert.NotNil(t, c.logger)

	c = NewClient(Options{BaseURL: "https://example.test/"})
	assert.Equal(t, "https://example.test", c.baseURL)
}
