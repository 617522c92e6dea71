package bgg

import (
	"context"
	"encoding/xml"
	stdErrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ahonkala/meepledex-backend/pkg/config"
	"github.com/ahonkala/meepledex-backend/pkg/errors"
	"github.com/ahonkala/meepledex-backend/pkg/logger"
	"github.com/ahonkala/meepledex-backend/pkg/redis"
)

const (
	cacheScopeThing  = "bgg_thing"
	cacheScopeSearch = "bgg_search"

	maxResponseBytes = 4 << 20
)

var (
	errBaseURLRequired = stdErrors.New("bgg base url is required")
	errLoggerRequired  = stdErrors.New("bgg logger is required")

	// ErrNotFound reports that the requested thing does not exist on BGG.
	ErrNotFound = stdErrors.New("bgg: thing not found")
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the BoardGameGeek XML API with retry handling for
// queued responses and a read-through cache for raw payloads.
type Client struct {
	http     httpDoer
	cache    redis.Cache
	logger   *logger.Logger
	baseURL  string
	retries  int
	backoff  time.Duration
	cacheTTL time.Duration
}

// NewClient validates the configuration and builds a BGG client. The cache
// may be nil, in which case every call hits the upstream API.
func NewClient(cfg config.BGGConfig, cache redis.Cache, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	retries := cfg.QueueRetries
	if retries < 1 {
		retries = 1
	}
	backoff := cfg.QueueBackoff
	if backoff <= 0 {
		backoff = 2 * time.Second
	}

	return &Client{
		http:     &http.Client{Timeout: cfg.RequestTimeout},
		cache:    cache,
		logger:   logg,
		baseURL:  baseURL,
		retries:  retries,
		backoff:  backoff,
		cacheTTL: cfg.CacheTTL,
	}, nil
}

// GetThing fetches one boardgame by its BGG id, including statistics.
func (c *Client) GetThing(ctx context.Context, bggID int64) (*Thing, error) {
	if bggID <= 0 {
		return nil, errors.New(errors.CodeValidation, "bgg id must be positive")
	}

	endpoint := fmt.Sprintf("%s/thing?id=%d&stats=1", c.baseURL, bggID)
	raw, err := c.fetch(ctx, "thing", cacheScopeThing, strconv.FormatInt(bggID, 10), endpoint)
	if err != nil {
		return nil, err
	}

	var parsed thingItems
	if err := xml.Unmarshal(raw, &parsed); err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "decoding bgg thing response")
	}
	if len(parsed.Items) == 0 {
		return nil, errors.Wrap(errors.CodeNotFound, ErrNotFound, fmt.Sprintf("bgg thing %d not found", bggID))
	}

	thing := parsed.Items[0].toThing()
	return &thing, nil
}

// Search queries BGG for boardgames matching the query string.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New(errors.CodeValidation, "search query is required")
	}

	endpoint := fmt.Sprintf("%s/search?query=%s&type=boardgame", c.baseURL, url.QueryEscape(query))
	raw, err := c.fetch(ctx, "search", cacheScopeSearch, strings.ToLower(query), endpoint)
	if err != nil {
		return nil, err
	}

	var parsed searchItems
	if err := xml.Unmarshal(raw, &parsed); err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "decoding bgg search response")
	}

	results := make([]SearchResult, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		results = append(results, SearchResult{
			BGGID:         item.ID,
			Name:          item.Name.Value,
			YearPublished: item.YearPublished.intPtr(),
		})
	}
	return results, nil
}

func (c *Client) fetch(ctx context.Context, op, cacheScope, cacheID, endpoint string) ([]byte, error) {
	if c.cache != nil {
		key := c.cache.CacheKey(cacheScope, cacheID)
		if cached, err := c.cache.Get(ctx, key); err == nil {
			return []byte(cached), nil
		} else if !stdErrors.Is(err, redis.ErrCacheMiss) {
			c.logger.Warn(ctx, fmt.Sprintf("bgg cache read failed for %s", op))
		}
	}

	raw, err := c.fetchUpstream(ctx, op, endpoint)
	if err != nil {
		return nil, err
	}

	if c.cache != nil && c.cacheTTL > 0 {
		key := c.cache.CacheKey(cacheScope, cacheID)
		if err := c.cache.Set(ctx, key, string(raw), c.cacheTTL); err != nil {
			c.logger.Warn(ctx, fmt.Sprintf("bgg cache write failed for %s", op))
		}
	}
	return raw, nil
}

// fetchUpstream retries while BGG answers 202, which signals the request
// has been queued and should be polled again.
func (c *Client) fetchUpstream(ctx context.Context, op, endpoint string) ([]byte, error) {
	var lastStatus int
	for attempt := 1; attempt <= c.retries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, errors.Wrap(errors.CodeInternal, err, "building bgg request")
		}
		req.Header.Set("Accept", "application/xml")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, errors.Wrap(errors.CodeDependency, err, fmt.Sprintf("bgg %s request failed", op))
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		resp.Body.Close()
		if readErr != nil {
			return nil, errors.Wrap(errors.CodeDependency, readErr, fmt.Sprintf("reading bgg %s response", op))
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusAccepted:
			lastStatus = resp.StatusCode
			c.logger.Info(c.logger.WithFields(ctx, map[string]any{
				"operation": op,
				"attempt":   attempt,
			}), "bgg request queued, retrying")
			select {
			case <-ctx.Done():
				return nil, errors.Wrap(errors.CodeDependency, ctx.Err(), fmt.Sprintf("bgg %s cancelled", op))
			case <-time.After(c.backoff):
			}
		case resp.StatusCode == http.StatusNotFound:
			return nil, errors.Wrap(errors.CodeNotFound, ErrNotFound, fmt.Sprintf("bgg %s returned 404", op))
		case resp.StatusCode == http.StatusTooManyRequests:
			lastStatus = resp.StatusCode
			select {
			case <-ctx.Done():
				return nil, errors.Wrap(errors.CodeDependency, ctx.Err(), fmt.Sprintf("bgg %s cancelled", op))
			case <-time.After(c.backoff):
			}
		default:
			return nil, errors.New(errors.CodeDependency, fmt.Sprintf("bgg %s returned status %d", op, resp.StatusCode))
		}
	}

	return nil, errors.New(errors.CodeDependency, fmt.Sprintf("bgg %s still pending after %d attempts (last status %d)", op, c.retries, lastStatus))
}
