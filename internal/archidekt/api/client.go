// Package api provides the Archidekt REST client and its wire models.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the production Archidekt endpoint.
	DefaultBaseURL = "https://archidekt.com"

	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"

	defaultTimeout = 30 * time.Second

	// Conservative pacing: Archidekt publishes no rate limits, so stay polite.
	rateLimitDelay = 200 * time.Millisecond
)

// Client is an Archidekt REST API client.
type Client struct {
	baseURL     string
	userAgent   string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// ClientOptions configures the API client.
type ClientOptions struct {
	// BaseURL overrides the Archidekt endpoint (useful for tests).
	BaseURL string

	// UserAgent overrides the User-Agent header.
	UserAgent string

	// Timeout for HTTP requests (default: 30 seconds).
	Timeout time.Duration

	// HTTPClient allows a custom HTTP client.
	HTTPClient *http.Client
}

// NewClient creates a new Archidekt API client.
func NewClient(options ClientOptions) *Client {
	if options.BaseURL == "" {
		options.BaseURL = DefaultBaseURL
	}
	if options.UserAgent == "" {
		options.UserAgent = DefaultUserAgent
	}
	if options.Timeout == 0 {
		options.Timeout = defaultTimeout
	}

	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: options.Timeout,
		}
	}

	return &Client{
		baseURL:     options.BaseURL,
		userAgent:   options.UserAgent,
		httpClient:  httpClient,
		rateLimiter: rate.NewLimiter(rate.Every(rateLimitDelay), 1),
	}
}

// BaseURL returns the endpoint this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/rest-auth/login/", "", LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return &resp, nil
}

// RefreshToken exchanges a refresh token for a fresh access token.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*TokenRefreshResponse, error) {
	var resp TokenRefreshResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/rest-auth/token/refresh/", "", TokenRefreshRequest{Refresh: refreshToken}, &resp)
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}
	return &resp, nil
}

// GetMyDecks lists the authenticated user's recently updated decks.
func (c *Client) GetMyDecks(ctx context.Context, authHeader string) ([]DeckSummary, error) {
	var resp DecksResponse
	err := c.doRequest(ctx, http.MethodGet, "/api/decks/curated/self-recent/", authHeader, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to get decks: %w", err)
	}
	return resp.Results, nil
}

// GetFolder retrieves a folder via the generic folder endpoint.
func (c *Client) GetFolder(ctx context.Context, authHeader string, folderID int) (*FolderResponse, error) {
	return c.getFolderPath(ctx, authHeader, fmt.Sprintf("/api/folders/%d/", folderID))
}

// GetDeckFolder retrieves a folder via the deck-scoped folder endpoint.
func (c *Client) GetDeckFolder(ctx context.Context, authHeader string, folderID int) (*FolderResponse, error) {
	return c.getFolderPath(ctx, authHeader, fmt.Sprintf("/api/decks/folders/%d/", folderID))
}

// GetUserFolder retrieves a folder via the user-scoped folder endpoint.
func (c *Client) GetUserFolder(ctx context.Context, authHeader string, folderID int) (*FolderResponse, error) {
	return c.getFolderPath(ctx, authHeader, fmt.Sprintf("/api/users/folders/%d/", folderID))
}

func (c *Client) getFolderPath(ctx context.Context, authHeader, path string) (*FolderResponse, error) {
	var resp FolderResponse
	if err := c.doRequest(ctx, http.MethodGet, path, authHeader, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ModifyCards applies a batch of patch operations to a deck.
func (c *Client) ModifyCards(ctx context.Context, authHeader string, deckID int, operations []PatchOperation) (*ModifyCardsResponse, error) {
	var resp ModifyCardsResponse
	path := fmt.Sprintf("/api/decks/%d/modifyCards/v2/", deckID)
	err := c.doRequest(ctx, http.MethodPatch, path, authHeader, ModifyCardsRequest{Cards: operations}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to modify cards in deck %d: %w", deckID, err)
	}
	return &resp, nil
}

// SearchCards performs a card name search.
func (c *Client) SearchCards(ctx context.Context, authHeader, query string) ([]SearchResultCard, error) {
	params := url.Values{}
	params.Set("nameSearch", query)
	params.Set("includeTokens", "true")
	params.Set("includeDigital", "true")
	params.Set("includeEmblems", "true")
	params.Set("unique", "true")

	var resp CardSearchResponse
	err := c.doRequest(ctx, http.MethodGet, "/api/cards/v2/?"+params.Encode(), authHeader, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("card search for %q failed: %w", query, err)
	}
	return resp.Results, nil
}

// GetColorTags lists the user's color tag definitions.
func (c *Client) GetColorTags(ctx context.Context, authHeader string) ([]ColorTagDefinition, error) {
	var resp []ColorTagDefinition
	err := c.doRequest(ctx, http.MethodGet, "/api/decks/colorTags/", authHeader, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to get color tags: %w", err)
	}
	return resp, nil
}

// doRequest performs one HTTP request against the API. There is no retry
// here: recovery from expired credentials is the session layer's job and is
// bounded to a single attempt there.
func (c *Client) doRequest(ctx context.Context, method, path, authHeader string, body, result any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Body: truncateBody(respBody)}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse JSON response: %w", err)
		}
	}

	return nil
}

// truncateBody keeps error bodies readable in logs.
func truncateBody(body []byte) string {
	const maxLen = 512
	if len(body) > maxLen {
		return string(body[:maxLen]) + "..."
	}
	return string(body)
}
