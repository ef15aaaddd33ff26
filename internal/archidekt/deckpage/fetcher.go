// Package deckpage fetches deck contents by scraping the embedded Next.js
// payload from the deck's HTML page. The card list is not exposed through
// the REST API, so this is the only way to read a full deck.
package deckpage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/migellal/archidekt-client/internal/archidekt/api"
)

var (
	// ErrMarkerNotFound means the page HTML did not contain the
	// __NEXT_DATA__ script block.
	ErrMarkerNotFound = errors.New("deck page payload marker not found")

	// ErrMalformedPayload means the script block was found but its JSON did
	// not contain a deck at the expected path.
	ErrMalformedPayload = errors.New("deck page payload is malformed")
)

const (
	payloadMarker = `<script id="__NEXT_DATA__" type="application/json">`
	payloadEnd    = `</script>`

	defaultTimeout = 30 * time.Second
)

// Fetcher retrieves and decodes deck pages.
type Fetcher struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// FetcherOptions configures a Fetcher. Zero values fall back to defaults.
type FetcherOptions struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NewFetcher creates a deck page fetcher.
func NewFetcher(opts FetcherOptions) *Fetcher {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = api.DefaultBaseURL
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = api.DefaultUserAgent
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Fetcher{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: httpClient,
	}
}

// nextData mirrors the path to the deck inside the Next.js payload.
type nextData struct {
	Props struct {
		PageProps struct {
			Redux struct {
				Deck *DeckSnapshot `json:"deck"`
			} `json:"redux"`
		} `json:"pageProps"`
	} `json:"props"`
}

// Fetch downloads the deck page and decodes its snapshot. The token is sent
// both as an Authorization header and as the tbJwt cookie; the page renderer
// only honors the cookie for private decks. There are no retries here, that
// recovery belongs to the caller.
func (f *Fetcher) Fetch(ctx context.Context, deckID int, authToken string) (*DeckSnapshot, error) {
	url := fmt.Sprintf("%s/decks/%d", f.baseURL, deckID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create deck page request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	if authToken != "" {
		req.Header.Set("Authorization", "JWT "+authToken)
		req.Header.Set("Cookie", "tbJwt="+authToken)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deck page request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &api.StatusError{Code: resp.StatusCode}
	}

	html, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read deck page: %w", err)
	}

	return decodeSnapshot(html)
}

// decodeSnapshot locates the payload script block and decodes the deck.
func decodeSnapshot(html []byte) (*DeckSnapshot, error) {
	page := string(html)

	start := strings.Index(page, payloadMarker)
	if start < 0 {
		return nil, ErrMarkerNotFound
	}
	start += len(payloadMarker)

	end := strings.Index(page[start:], payloadEnd)
	if end < 0 {
		return nil, ErrMarkerNotFound
	}

	var data nextData
	if err := json.Unmarshal([]byte(page[start:start+end]), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	deck := data.Props.PageProps.Redux.Deck
	if deck == nil {
		return nil, fmt.Errorf("%w: no deck at props.pageProps.redux.deck", ErrMalformedPayload)
	}
	return deck, nil
}
