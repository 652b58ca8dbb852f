// internal/enrich/fetcher.go
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"icebreaker-service/internal/common/cache"
	"icebreaker-service/internal/common/logger"
	"icebreaker-service/internal/common/metrics"
)

var (
	ErrFetchFailed  = errors.New("PROFILE_FETCH_FAILED")
	ErrFetchTimeout = errors.New("PROFILE_FETCH_TIMEOUT")
)

type Config struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Fetcher retrieves raw profile payloads from the enrichment API. Fetched
// payloads are cached by profile URL to save enrichment quota; the cache is
// best effort and any cache problem degrades to a live fetch.
type Fetcher struct {
	config *Config
	client *http.Client
	cache  *cache.Client
	logger logger.Logger
}

// NewFetcher creates a Fetcher. cacheClient may be nil to disable caching.
func NewFetcher(config *Config, cacheClient *cache.Client, log logger.Logger) *Fetcher {
	return &Fetcher{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		cache:  cacheClient,
		logger: log.With(map[string]interface{}{"component": "enrich"}),
	}
}

// Fetch returns the raw profile JSON for profileURL.
func (f *Fetcher) Fetch(ctx context.Context, profileURL string) (map[string]interface{}, error) {
	if raw, ok := f.cacheGet(ctx, profileURL); ok {
		return raw, nil
	}

	endpoint, err := url.Parse(f.config.BaseURL + "/enrichment/profile")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	params := url.Values{}
	params.Add("apikey", f.config.APIKey)
	params.Add("linkedInUrl", profileURL)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded ||
			strings.Contains(err.Error(), "timeout") ||
			strings.Contains(err.Error(), "Client.Timeout") {
			return nil, ErrFetchTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: enrichment API returned %d", ErrFetchFailed, resp.StatusCode)
	}

	var raw map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrFetchFailed, err)
	}

	f.logger.Info("profile fetched", map[string]interface{}{
		"url": profileURL,
	})

	f.cacheSet(ctx, profileURL, raw)
	return raw, nil
}

func (f *Fetcher) cacheGet(ctx context.Context, profileURL string) (map[string]interface{}, bool) {
	if f.cache == nil {
		return nil, false
	}

	val, err := f.cache.Get(ctx, cacheKey(profileURL))
	if err != nil {
		if !cache.IsMiss(err) {
			f.logger.Warn("profile cache unavailable", map[string]interface{}{
				"error": err.Error(),
			})
		}
		metrics.CacheHits.WithLabelValues("miss").Inc()
		return nil, false
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(val), &raw); err != nil {
		metrics.CacheHits.WithLabelValues("miss").Inc()
		return nil, false
	}

	metrics.CacheHits.WithLabelValues("hit").Inc()
	return raw, true
}

func (f *Fetcher) cacheSet(ctx context.Context, profileURL string, raw map[string]interface{}) {
	if f.cache == nil {
		return
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return
	}
	if err := f.cache.Set(ctx, cacheKey(profileURL), string(data), f.config.CacheTTL); err != nil {
		f.logger.Warn("profile cache write failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func cacheKey(profileURL string) string {
	return "rawprofile:" + profileURL
}
