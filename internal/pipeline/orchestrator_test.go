// internal/pipeline/orchestrator_test.go
package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icebreaker-service/internal/common/logger"
	"icebreaker-service/internal/synthesis"
)

type fakeResolver struct {
	mu    sync.Mutex
	urls  map[string]string
	errs  map[string]error
	calls []string
}

func (f *fakeResolver) Resolve(ctx context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if err, ok := f.errs[name]; ok {
		return "", err
	}
	return f.urls[name], nil
}

type fakeFetcher struct {
	mu       sync.Mutex
	payloads map[string]map[string]interface{}
	errs     map[string]error
	calls    []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, profileURL string) (map[string]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, profileURL)
	if err, ok := f.errs[profileURL]; ok {
		return nil, err
	}
	return f.payloads[profileURL], nil
}

type fakeSummarizer struct {
	summary *synthesis.Summary
	err     error
	lastReq *synthesis.Request
}

func (f *fakeSummarizer) Synthesize(ctx context.Context, req *synthesis.Request) (*synthesis.Summary, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

func okSummary() *synthesis.Summary {
	return &synthesis.Summary{
		Summary:           "a summary",
		Facts:             []string{"fact one", "fact two"},
		CommonThings:      []string{"a common thing"},
		IcebreakerMessage: "Hi there",
	}
}

func newTestOrchestrator(resolver Resolver, fetcher Fetcher, summarizer Summarizer, fixture FixtureFunc, useFixture bool) *Orchestrator {
	return NewOrchestrator(
		&Config{Timeout: 5 * time.Second, RequesterFixture: useFixture},
		resolver, fetcher, summarizer, fixture,
		logger.NewNoOpLogger(),
	)
}

func TestOrchestrator_Run_HappyPath(t *testing.T) {
	resolver := &fakeResolver{urls: map[string]string{
		"Jasjot Parmar": "https://www.linkedin.com/in/jasjotparmar",
		"Eden Marco":    "https://www.linkedin.com/in/eden-marco",
	}}
	fetcher := &fakeFetcher{payloads: map[string]map[string]interface{}{
		"https://www.linkedin.com/in/jasjotparmar": {
			"person": map[string]interface{}{
				"firstName": "Jasjot",
				"lastName":  "Parmar",
				"skills":    []interface{}{"Python"},
			},
		},
		"https://www.linkedin.com/in/eden-marco": {
			"person": map[string]interface{}{
				"firstName": "Eden",
				"lastName":  "Marco",
				"photoUrl":  "https://media.licdn.com/eden.jpg",
				"skills":    []interface{}{"Python", "Go"},
			},
		},
	}}
	summarizer := &fakeSummarizer{summary: okSummary()}

	orch := newTestOrchestrator(resolver, fetcher, summarizer, nil, false)
	summary, photoURL, err := orch.Run(context.Background(), "Jasjot Parmar", "Eden Marco")

	require.NoError(t, err)
	assert.Equal(t, okSummary(), summary)
	assert.Equal(t, "https://media.licdn.com/eden.jpg", photoURL)

	require.NotNil(t, summarizer.lastReq)
	assert.Equal(t, "Jasjot Parmar", summarizer.lastReq.RequesterName)
	assert.Equal(t, "Eden Marco", summarizer.lastReq.TargetDisplayName)
	assert.Equal(t, "Eden", summarizer.lastReq.TargetFirstName)
	assert.Equal(t, []string{"Python", "Go"}, summarizer.lastReq.TargetProfile.Skills)
	assert.Len(t, resolver.calls, 2)
	assert.Len(t, fetcher.calls, 2)
}

func TestOrchestrator_Run_RequesterFixtureSkipsLiveAcquisition(t *testing.T) {
	resolver := &fakeResolver{urls: map[string]string{
		"Eden Marco": "https://www.linkedin.com/in/eden-marco",
	}}
	fetcher := &fakeFetcher{payloads: map[string]map[string]interface{}{
		"https://www.linkedin.com/in/eden-marco": {
			"person": map[string]interface{}{"firstName": "Eden", "lastName": "Marco"},
		},
	}}
	summarizer := &fakeSummarizer{summary: okSummary()}
	fixture := func() (map[string]interface{}, error) {
		return map[string]interface{}{
			"person": map[string]interface{}{
				"firstName": "Jasjot",
				"skills":    []interface{}{"SQL"},
			},
		}, nil
	}

	orch := newTestOrchestrator(resolver, fetcher, summarizer, fixture, true)
	_, _, err := orch.Run(context.Background(), "Jasjot Parmar", "Eden Marco")

	require.NoError(t, err)
	assert.Equal(t, []string{"Eden Marco"}, resolver.calls, "requester must come from the fixture")
	assert.Equal(t, []string{"SQL"}, summarizer.lastReq.RequesterProfile.Skills)
}

func TestOrchestrator_Run_ResolutionMissDegradesToEmptyIdentity(t *testing.T) {
	resolver := &fakeResolver{urls: map[string]string{
		// requester resolves to nothing, target resolves fine
		"Eden Marco": "https://www.linkedin.com/in/eden-marco",
	}}
	fetcher := &fakeFetcher{payloads: map[string]map[string]interface{}{
		"https://www.linkedin.com/in/eden-marco": {
			"person": map[string]interface{}{"firstName": "Eden", "lastName": "Marco"},
		},
	}}
	summarizer := &fakeSummarizer{summary: okSummary()}

	orch := newTestOrchestrator(resolver, fetcher, summarizer, nil, false)
	summary, _, err := orch.Run(context.Background(), "Nobody Anywhere", "Eden Marco")

	require.NoError(t, err)
	assert.NotNil(t, summary)
	assert.Empty(t, summarizer.lastReq.RequesterProfile.Skills)
	assert.Equal(t, []string{"https://www.linkedin.com/in/eden-marco"}, fetcher.calls)
}

func TestOrchestrator_Run_FetchFailureDegradesToEmptyIdentity(t *testing.T) {
	resolver := &fakeResolver{urls: map[string]string{
		"Jasjot Parmar": "https://www.linkedin.com/in/jasjotparmar",
		"Eden Marco":    "https://www.linkedin.com/in/eden-marco",
	}}
	fetcher := &fakeFetcher{
		payloads: map[string]map[string]interface{}{
			"https://www.linkedin.com/in/jasjotparmar": {
				"person": map[string]interface{}{"firstName": "Jasjot"},
			},
		},
		errs: map[string]error{
			"https://www.linkedin.com/in/eden-marco": errors.New("enrichment API returned 500"),
		},
	}
	summarizer := &fakeSummarizer{summary: okSummary()}

	orch := newTestOrchestrator(resolver, fetcher, summarizer, nil, false)
	summary, photoURL, err := orch.Run(context.Background(), "Jasjot Parmar", "Eden Marco")

	require.NoError(t, err)
	assert.NotNil(t, summary)
	assert.Empty(t, photoURL)
	// With no fetched payload the typed name is all we have.
	assert.Equal(t, "Eden Marco", summarizer.lastReq.TargetDisplayName)
	assert.Equal(t, "Eden", summarizer.lastReq.TargetFirstName)
}

func TestOrchestrator_Run_SynthesisFailureIsFatal(t *testing.T) {
	resolver := &fakeResolver{urls: map[string]string{}}
	fetcher := &fakeFetcher{}
	summarizer := &fakeSummarizer{err: synthesis.ErrSynthesisFailed}

	orch := newTestOrchestrator(resolver, fetcher, summarizer, nil, false)
	summary, photoURL, err := orch.Run(context.Background(), "A", "B")

	assert.Nil(t, summary)
	assert.Empty(t, photoURL)
	assert.True(t, errors.Is(err, synthesis.ErrSynthesisFailed))
}

func TestTargetDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		raw      map[string]interface{}
		fallback string
		want     string
	}{
		{
			name: "full name from person",
			raw: map[string]interface{}{
				"person": map[string]interface{}{"firstName": "Eden", "lastName": "Marco"},
			},
			fallback: "eden marco linkedin",
			want:     "Eden Marco",
		},
		{
			name: "first name only",
			raw: map[string]interface{}{
				"person": map[string]interface{}{"firstName": "Eden"},
			},
			fallback: "someone",
			want:     "Eden",
		},
		{
			name:     "unwrapped payload",
			raw:      map[string]interface{}{"firstName": "Eden", "lastName": "Marco"},
			fallback: "someone",
			want:     "Eden Marco",
		},
		{
			name:     "empty payload falls back to typed name",
			raw:      map[string]interface{}{},
			fallback: "  Eden Marco  ",
			want:     "Eden Marco",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, targetDisplayName(tt.raw, tt.fallback))
		})
	}
}

func TestFirstName(t *testing.T) {
	assert.Equal(t, "Eden", firstName("Eden Marco"))
	assert.Equal(t, "Eden", firstName("Eden"))
	assert.Equal(t, "", firstName(""))
}
