// Package nyt is a minimal client for the New York Times Books API.
package nyt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	apperrors "github.com/lepinkainen/bookrank/internal/errors"
)

const sourceName = "NYT"

// Client fetches dated bestseller lists.
type Client struct {
	http   *resty.Client
	apiKey string
}

// NewClient creates a client rooted at baseURL. Requests time out after
// timeout and are never retried.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetRetryCount(0)
	client.SetHeader("Accept", "application/json")

	return &Client{
		http:   client,
		apiKey: apiKey,
	}
}

// Overview fetches every list published on publishedDate (YYYY-MM-DD).
func (c *Client) Overview(ctx context.Context, publishedDate string) (*Overview, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("published_date", publishedDate).
		SetQueryParam("api-key", c.apiKey).
		Get("/lists/full-overview.json")
	if err != nil {
		return nil, fmt.Errorf("NYT overview request: %w", err)
	}

	if resp.StatusCode() == http.StatusTooManyRequests {
		return nil, apperrors.NewRateLimitErrorWithRetry(sourceName, "overview rate limited", retryAfter(resp))
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("NYT overview returned status %d", resp.StatusCode())
	}

	var payload overviewResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("decoding NYT overview: %w", err)
	}

	overview := payload.toOverview()
	if overview.Malformed > 0 {
		slog.Warn("Dropped malformed bestseller entries", "count", overview.Malformed, "published_date", publishedDate)
	}
	return overview, nil
}

func retryAfter(resp *resty.Response) time.Duration {
	secs, err := strconv.Atoi(resp.Header().Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
