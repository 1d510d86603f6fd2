// Package suggest implements the client for the external
// category-suggestion service.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/hareba/catres/internal/common"
	"github.com/hareba/catres/internal/model"
	"github.com/hareba/catres/internal/service"
)

// DefaultTimeout bounds a single suggestion round-trip.
const DefaultTimeout = 10 * time.Second

// Config holds connection settings for the suggestion service.
type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// Client calls the external suggestion service. It is best-effort by
// contract: any transport or payload problem surfaces as an error the
// orchestrator swallows.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

var _ service.Suggester = (*Client)(nil)

// NewClient creates a suggestion client. Missing endpoint or key leaves
// the client unconfigured rather than failing; resolution then simply
// skips the external stage.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Configured reports whether credentials and an endpoint are present.
func (c *Client) Configured() bool {
	return c.endpoint != "" && c.apiKey != ""
}

// fetch performs one round-trip and returns the raw response body.
func (c *Client) fetch(ctx context.Context, text string) ([]byte, error) {
	reqURL := fmt.Sprintf("%s/suggest?q=%s", c.endpoint, url.QueryEscape(text))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrSuggesterUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", common.ErrSuggesterUnavailable, resp.StatusCode, string(body))
	}

	return body, nil
}

// suggestionPayload mirrors the service's wire format.
type suggestionPayload struct {
	Suggestions []struct {
		CategoryID   string   `json:"category_id"`
		CategoryName string   `json:"category_name"`
		CategoryPath []string `json:"category_path"`
		PercentMatch float64  `json:"percent_match"`
	} `json:"suggestions"`
}

// Suggest issues one request for the query and returns ranked
// candidates. The free-text query string combines title and brand, the
// strongest signals the service accepts. Transport failures get one
// retry before the caller gives up and releases the budget slot.
func (c *Client) Suggest(ctx context.Context, query model.ProductQuery) ([]model.CategoryCandidate, error) {
	if !c.Configured() {
		return nil, common.ErrMissingConfig
	}

	text := query.Title
	if query.Brand != "" {
		text += " " + query.Brand
	}

	var body []byte
	var fetchErr error
	retryErr := common.WithRetry(ctx, func() error {
		body, fetchErr = c.fetch(ctx, text)
		return fetchErr
	}, service.RetryOptions{
		MaxAttempts:  2,
		InitialDelay: 200 * time.Millisecond,
	})
	if retryErr != nil {
		// Return the transport error itself so callers can match the
		// sentinel.
		return nil, fetchErr
	}

	var payload suggestionPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedSuggestion, err)
	}
	if len(payload.Suggestions) == 0 {
		return nil, fmt.Errorf("%w: empty suggestion list", common.ErrMalformedSuggestion)
	}

	candidates := make([]model.CategoryCandidate, 0, len(payload.Suggestions))
	for _, s := range payload.Suggestions {
		if s.CategoryID == "" || s.CategoryName == "" {
			return nil, fmt.Errorf("%w: suggestion missing category", common.ErrMalformedSuggestion)
		}
		candidates = append(candidates, model.CategoryCandidate{
			CategoryID:   s.CategoryID,
			CategoryName: s.CategoryName,
			CategoryPath: s.CategoryPath,
			RawScore:     s.PercentMatch,
			Confidence:   model.ClampConfidence(int(math.Round(s.PercentMatch))),
			Source:       model.SourceExternal,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].RawScore > candidates[j].RawScore
	})

	return candidates, nil
}
