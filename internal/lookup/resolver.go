// internal/lookup/resolver.go
package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"icebreaker-service/internal/common/logger"
	"icebreaker-service/internal/common/metrics"
)

const profileMarker = "linkedin.com/in/"

var ErrSearchTimeout = errors.New("SEARCH_TIMEOUT")

type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxResults int
}

// Resolver maps a person's name to a public profile URL using a web search
// API. A search that yields no recognizable profile URL is a miss, not an
// error: the pipeline continues with an empty identity.
type Resolver struct {
	config *Config
	client *http.Client
	logger logger.Logger
}

func NewResolver(config *Config, log logger.Logger) *Resolver {
	return &Resolver{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		logger: log.With(map[string]interface{}{"component": "lookup"}),
	}
}

type searchResult struct {
	Title string  `json:"title"`
	URL   string  `json:"url"`
	Score float64 `json:"score"`
}

// Resolve returns the best-matching profile URL for name, or "" when no
// confident match exists.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"api_key":     r.config.APIKey,
		"query":       fmt.Sprintf("%s linkedin profile", name),
		"max_results": r.config.MaxResults,
	})

	req, err := http.NewRequestWithContext(ctx, "POST", r.config.BaseURL+"/search", bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded ||
			strings.Contains(err.Error(), "timeout") ||
			strings.Contains(err.Error(), "Client.Timeout") {
			return "", ErrSearchTimeout
		}
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search API returned %d", resp.StatusCode)
	}

	var apiResponse struct {
		Results []searchResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", err
	}

	profileURL := pickProfileURL(apiResponse.Results)
	if profileURL == "" {
		metrics.ResolutionMisses.WithLabelValues("unknown").Inc()
		r.logger.Warn("no confident profile match", map[string]interface{}{
			"name":        name,
			"resultCount": len(apiResponse.Results),
		})
		return "", nil
	}

	r.logger.Info("profile resolved", map[string]interface{}{
		"name": name,
		"url":  profileURL,
	})
	return profileURL, nil
}

// pickProfileURL returns the highest-scored result that looks like a
// profile page, with tracking parameters stripped.
func pickProfileURL(results []searchResult) string {
	best := ""
	bestScore := -1.0
	for _, res := range results {
		if !strings.Contains(strings.ToLower(res.URL), profileMarker) {
			continue
		}
		if res.Score > bestScore {
			best = res.URL
			bestScore = res.Score
		}
	}
	if best == "" {
		return ""
	}
	return normalizeProfileURL(best)
}

func normalizeProfileURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimSuffix(u.String(), "/")
}
