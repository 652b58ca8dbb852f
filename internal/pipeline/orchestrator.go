// internal/pipeline/orchestrator.go
package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"icebreaker-service/internal/common/logger"
	"icebreaker-service/internal/common/metrics"
	"icebreaker-service/internal/profile"
	"icebreaker-service/internal/synthesis"
)

// Resolver maps a person's name to a public profile URL.
type Resolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// Fetcher retrieves the raw profile payload for a profile URL.
type Fetcher interface {
	Fetch(ctx context.Context, profileURL string) (map[string]interface{}, error)
}

// Summarizer produces the final structured summary from two profiles.
type Summarizer interface {
	Synthesize(ctx context.Context, req *synthesis.Request) (*synthesis.Summary, error)
}

// FixtureFunc returns a canned raw profile payload for the requester side.
type FixtureFunc func() (map[string]interface{}, error)

type Config struct {
	Timeout time.Duration

	// RequesterFixture short-circuits the requester side with the embedded
	// canned profile instead of a live resolve+fetch.
	RequesterFixture bool
}

// Orchestrator runs the full icebreaker pipeline for one request. Profile
// acquisition problems degrade to empty identities; only synthesis failures
// surface to the caller.
type Orchestrator struct {
	config      *Config
	resolver    Resolver
	fetcher     Fetcher
	synthesizer Summarizer
	fixture     FixtureFunc
	logger      logger.Logger
}

func NewOrchestrator(config *Config, resolver Resolver, fetcher Fetcher, synthesizer Summarizer, fixture FixtureFunc, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		config:      config,
		resolver:    resolver,
		fetcher:     fetcher,
		synthesizer: synthesizer,
		fixture:     fixture,
		logger:      log.With(map[string]interface{}{"component": "pipeline"}),
	}
}

// Run resolves and fetches both identities concurrently, normalizes the raw
// payloads and synthesizes the summary. The returned string is the target's
// photo URL, empty when none is known.
func (o *Orchestrator) Run(ctx context.Context, requesterName, targetName string) (*synthesis.Summary, string, error) {
	if o.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.config.Timeout)
		defer cancel()
	}

	acquireStart := time.Now()
	var (
		wg           sync.WaitGroup
		requesterRaw map[string]interface{}
		targetRaw    map[string]interface{}
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		requesterRaw = o.acquireRequester(ctx, requesterName)
	}()
	go func() {
		defer wg.Done()
		targetRaw = o.acquire(ctx, "target", targetName)
	}()
	wg.Wait()
	metrics.StageDuration.WithLabelValues("acquire").Observe(time.Since(acquireStart).Seconds())

	requesterProfile := profile.Normalize(requesterRaw)
	targetProfile := profile.Normalize(targetRaw)

	displayName := targetDisplayName(targetRaw, targetName)
	synthesisStart := time.Now()
	summary, err := o.synthesizer.Synthesize(ctx, &synthesis.Request{
		RequesterName:     requesterName,
		TargetDisplayName: displayName,
		TargetFirstName:   firstName(displayName),
		RequesterProfile:  requesterProfile,
		TargetProfile:     targetProfile,
	})
	metrics.StageDuration.WithLabelValues("synthesis").Observe(time.Since(synthesisStart).Seconds())
	if err != nil {
		return nil, "", err
	}

	return summary, targetProfile.PhotoURL, nil
}

func (o *Orchestrator) acquireRequester(ctx context.Context, name string) map[string]interface{} {
	if o.config.RequesterFixture && o.fixture != nil {
		raw, err := o.fixture()
		if err == nil {
			return raw
		}
		o.logger.Warn("requester fixture unavailable, falling back to live acquisition", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return o.acquire(ctx, "requester", name)
}

// acquire runs resolve+fetch for one identity. Every failure mode along the
// way degrades to an empty payload so a one-sided miss never kills the
// request.
func (o *Orchestrator) acquire(ctx context.Context, identity, name string) map[string]interface{} {
	profileURL, err := o.resolver.Resolve(ctx, name)
	if err != nil {
		metrics.ResolutionMisses.WithLabelValues(identity).Inc()
		o.logger.Warn("resolution failed, continuing with empty identity", map[string]interface{}{
			"identity": identity,
			"name":     name,
			"error":    err.Error(),
		})
		return map[string]interface{}{}
	}
	if profileURL == "" {
		return map[string]interface{}{}
	}

	raw, err := o.fetcher.Fetch(ctx, profileURL)
	if err != nil {
		metrics.FetchFailures.WithLabelValues(identity).Inc()
		o.logger.Warn("fetch failed, continuing with empty identity", map[string]interface{}{
			"identity": identity,
			"url":      profileURL,
			"error":    err.Error(),
		})
		return map[string]interface{}{}
	}
	return raw
}

// targetDisplayName prefers the fetched profile's own first/last name over
// the name the caller typed, which may be a rough search query.
func targetDisplayName(raw map[string]interface{}, fallback string) string {
	person, _ := raw["person"].(map[string]interface{})
	if person == nil {
		person = raw
	}
	first, _ := person["firstName"].(string)
	last, _ := person["lastName"].(string)
	full := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	if full != "" {
		return full
	}
	return strings.TrimSpace(fallback)
}

func firstName(displayName string) string {
	fields := strings.Fields(displayName)
	if len(fields) == 0 {
		return displayName
	}
	return fields[0]
}
