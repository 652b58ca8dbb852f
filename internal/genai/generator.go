// internal/genai/generator.go
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	lcschema "github.com/tmc/langchaingo/schema"
	"github.com/xeipuuv/gojsonschema"

	"icebreaker-service/internal/common/logger"
)

var (
	ErrGenerationFailed  = errors.New("GENERATION_FAILED")
	ErrGenerationTimeout = errors.New("GENERATION_TIMEOUT")
)

// Generator is the structured generation capability: given a prompt and a
// JSON schema, it returns a raw JSON value conforming to that schema or
// fails. Retries on malformed output happen inside the capability; callers
// treat a failure as final.
type Generator interface {
	Generate(ctx context.Context, prompt string, schema string) (json.RawMessage, error)
}

type Config struct {
	BaseURL     string // optional OpenAI-compatible endpoint override
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	MaxRetries  int
	Timeout     time.Duration
}

// LangChainGenerator implements Generator on a langchaingo chat model with
// JSON mode, validating every response against the target schema before
// handing it back.
type LangChainGenerator struct {
	model  llms.Model
	config *Config
	logger logger.Logger
}

func NewLangChainGenerator(config *Config, log logger.Logger) (*LangChainGenerator, error) {
	opts := []openai.Option{
		openai.WithToken(config.APIKey),
		openai.WithModel(config.Model),
	}
	if config.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(config.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	return NewWithModel(model, config, log), nil
}

// NewWithModel wires an existing model, used by tests to inject a fake.
func NewWithModel(model llms.Model, config *Config, log logger.Logger) *LangChainGenerator {
	return &LangChainGenerator{
		model:  model,
		config: config,
		logger: log.With(map[string]interface{}{"component": "genai"}),
	}
}

func (g *LangChainGenerator) Generate(ctx context.Context, prompt string, schema string) (json.RawMessage, error) {
	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	messages := []llms.MessageContent{
		llms.TextParts(lcschema.ChatMessageTypeSystem,
			"You respond with a single JSON object conforming to this JSON Schema, with no surrounding text:\n"+schema),
		llms.TextParts(lcschema.ChatMessageTypeHuman, prompt),
	}

	schemaLoader := gojsonschema.NewStringLoader(schema)

	var lastErr error
	for attempt := 0; attempt <= g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrGenerationTimeout
			}
		}

		resp, err := g.model.GenerateContent(ctx, messages,
			llms.WithTemperature(g.config.Temperature),
			llms.WithMaxTokens(g.config.MaxTokens),
			llms.WithJSONMode(),
		)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ErrGenerationTimeout
			}
			lastErr = err
			continue
		}
		if resp == nil || len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("empty response from model")
			continue
		}

		raw := stripFences(resp.Choices[0].Content)
		if err := validate(schemaLoader, raw); err != nil {
			g.logger.Warn("generation output rejected", map[string]interface{}{
				"attempt": attempt,
				"error":   err.Error(),
			})
			lastErr = err
			continue
		}

		return json.RawMessage(raw), nil
	}

	if ctx.Err() == context.DeadlineExceeded {
		return nil, ErrGenerationTimeout
	}
	return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, lastErr)
}

func validate(schemaLoader gojsonschema.JSONLoader, raw string) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("output is not valid JSON: %v", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("output violates schema: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// stripFences removes a markdown code fence around the payload. Models in
// JSON mode still occasionally wrap the object.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
