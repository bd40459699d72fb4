// Package openlibrary resolves community ratings for an ISBN through the
// Open Library edition and work endpoints.
package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/lepinkainen/bookrank/internal/cache"
	"github.com/lepinkainen/bookrank/internal/enrichment/book"
	apperrors "github.com/lepinkainen/bookrank/internal/errors"
	"github.com/lepinkainen/bookrank/internal/ratelimit"
)

const (
	sourceName = "OpenLibrary"
	cacheTable = "openlibrary_cache"
)

// Client looks up ratings. It is safe for sequential use by one run.
type Client struct {
	http     *resty.Client
	limiter  *ratelimit.Limiter
	useCache bool
	// throttled is set by the first 429; later lookups skip without a request.
	throttled atomic.Bool
}

// Compile-time check that Client implements book.RatingSource.
var _ book.RatingSource = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithLimiter replaces the default 1 req/s limiter.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithCache toggles the SQLite response cache.
func WithCache(enabled bool) Option {
	return func(c *Client) {
		c.useCache = enabled
	}
}

// NewClient creates a client rooted at baseURL. Requests time out after
// timeout and are never retried.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetRetryCount(0)
	client.SetHeader("Accept", "application/json")

	c := &Client{
		http:     client,
		limiter:  ratelimit.New(sourceName, 1),
		useCache: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the human-readable name of this source.
func (c *Client) Name() string {
	return sourceName
}

// Ping tests the connection to Open Library.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Head("/")
	if err != nil {
		return fmt.Errorf("OpenLibrary ping failed: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("OpenLibrary returned status %d", resp.StatusCode())
	}
	return nil
}

// Rating returns the average community rating of the work isbn belongs to.
// Every failure is a *errors.SkipError naming the stage that failed; the
// "no rating" outcomes also match book.ErrNoRating.
func (c *Client) Rating(ctx context.Context, isbn string) (float64, error) {
	if isbn == "" {
		return 0, apperrors.NewSkipError(apperrors.StageMissingISBN, isbn, book.ErrInvalidISBN)
	}

	var (
		result *ratingLookup
		err    error
	)
	if c.useCache {
		result, _, err = cache.GetOrFetchWithTTL(cacheTable, isbn, func() (*ratingLookup, error) {
			return c.lookup(ctx, isbn)
		}, cache.SelectNegativeCacheTTL(func(r *ratingLookup) bool {
			return r.NotFound
		}))
	} else {
		result, err = c.lookup(ctx, isbn)
	}
	if err != nil {
		return 0, err
	}

	if result.NotFound || result.Average == nil {
		return 0, apperrors.NewSkipError(apperrors.Stage(result.Stage), isbn, book.ErrNoRating)
	}
	return *result.Average, nil
}

// lookup performs edition -> work -> ratings. Definitive negatives come back
// as a NotFound result, transient failures as an error.
func (c *Client) lookup(ctx context.Context, isbn string) (*ratingLookup, error) {
	workID, missing, err := c.workID(ctx, isbn)
	if err != nil {
		return nil, err
	}
	if missing != "" {
		return &ratingLookup{NotFound: true, Stage: string(missing)}, nil
	}

	summary, found, err := c.ratings(ctx, isbn, workID)
	if err != nil {
		return nil, err
	}
	if !found || summary.Summary == nil || summary.Summary.Average == nil {
		stage := apperrors.StageNoAverage
		if !found {
			stage = apperrors.StageRatingsLookup
		}
		return &ratingLookup{WorkID: workID, NotFound: true, Stage: string(stage)}, nil
	}

	return &ratingLookup{
		WorkID:  workID,
		Average: summary.Summary.Average,
		Count:   summary.Summary.Count,
	}, nil
}

// workID resolves an ISBN to the bare work identifier, e.g. "OL45804W".
// When there is none, the returned stage says why: no edition for the ISBN
// or an edition without works.
func (c *Client) workID(ctx context.Context, isbn string) (string, apperrors.Stage, error) {
	body, found, err := c.get(ctx, apperrors.StageEditionLookup, isbn, "/isbn/"+isbn+".json")
	if err != nil {
		return "", "", err
	}
	if !found {
		return "", apperrors.StageEditionLookup, nil
	}

	var edition editionResponse
	if err := json.Unmarshal(body, &edition); err != nil {
		return "", "", apperrors.NewSkipError(apperrors.StageEditionLookup, isbn, fmt.Errorf("decoding edition: %w", err))
	}

	if len(edition.Works) == 0 || edition.Works[0].Key == "" {
		return "", apperrors.StageWorkMissing, nil
	}

	key := edition.Works[0].Key
	return key[strings.LastIndex(key, "/")+1:], "", nil
}

func (c *Client) ratings(ctx context.Context, isbn, workID string) (*ratingsResponse, bool, error) {
	body, found, err := c.get(ctx, apperrors.StageRatingsLookup, isbn, "/works/"+workID+"/ratings.json")
	if err != nil || !found {
		return nil, found, err
	}

	var summary ratingsResponse
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, false, apperrors.NewSkipError(apperrors.StageRatingsLookup, isbn, fmt.Errorf("decoding ratings: %w", err))
	}
	return &summary, true, nil
}

// get issues a rate-limited GET. A 404 is reported as not found; other
// non-success statuses and transport errors are returned as SkipErrors.
func (c *Client) get(ctx context.Context, stage apperrors.Stage, isbn, path string) ([]byte, bool, error) {
	if c.throttled.Load() {
		return nil, false, apperrors.NewSkipError(stage, isbn,
			apperrors.NewRateLimitError(sourceName, "skipped after earlier rate limit"))
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, false, err
	}

	resp, err := c.http.R().SetContext(ctx).Get(path)
	if err != nil {
		return nil, false, apperrors.NewSkipError(stage, isbn, fmt.Errorf("OpenLibrary request: %w", err))
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, false, nil
	case resp.StatusCode() == http.StatusTooManyRequests:
		c.markThrottled()
		return nil, false, apperrors.NewSkipError(stage, isbn,
			apperrors.NewRateLimitErrorWithRetry(sourceName, "rate limited", retryAfter(resp)))
	case !resp.IsSuccess():
		return nil, false, apperrors.NewSkipError(stage, isbn,
			fmt.Errorf("%s returned status %d: %w", path, resp.StatusCode(), book.ErrAPIUnavailable))
	}

	return resp.Body(), true, nil
}

// markThrottled logs once and makes every later request of this run skip.
func (c *Client) markThrottled() {
	if c.throttled.CompareAndSwap(false, true) {
		slog.Warn("OpenLibrary rate limit reached; skipping further rating lookups for this run")
	}
}

func retryAfter(resp *resty.Response) time.Duration {
	secs, err := strconv.Atoi(resp.Header().Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
