// internal/synthesis/synthesizer.go
package synthesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"icebreaker-service/internal/common/logger"
	"icebreaker-service/internal/common/metrics"
	"icebreaker-service/internal/genai"
)

var (
	ErrSynthesisFailed  = errors.New("SYNTHESIS_FAILED")
	ErrSynthesisTimeout = errors.New("SYNTHESIS_TIMEOUT")
)

// SummarySchema is the target schema for the generation call. Anything the
// generator returns that does not conform is a synthesis failure, never a
// partial result.
const SummarySchema = `{
	"type": "object",
	"properties": {
		"summary": {
			"type": "string",
			"description": "short summary about the target person, referring to them by name"
		},
		"facts": {
			"type": "array",
			"items": {"type": "string"},
			"description": "two interesting facts about the target person"
		},
		"common_things": {
			"type": "array",
			"items": {"type": "string"},
			"description": "up to two concrete commonalities between the requester and the target"
		},
		"icebreaker_message": {
			"type": "string",
			"description": "single-paragraph outreach message ready to paste into a DM"
		}
	},
	"required": ["summary", "facts", "common_things", "icebreaker_message"],
	"additionalProperties": false
}`

// Synthesizer turns two canonical profiles into a Summary via the
// structured generation capability. It does not retry: the capability
// applies its own retry policy and its failure is final here.
type Synthesizer struct {
	generator genai.Generator
	logger    logger.Logger
}

func NewSynthesizer(generator genai.Generator, log logger.Logger) *Synthesizer {
	return &Synthesizer{
		generator: generator,
		logger:    log.With(map[string]interface{}{"component": "synthesis"}),
	}
}

func (s *Synthesizer) Synthesize(ctx context.Context, req *Request) (*Summary, error) {
	prompt := buildPrompt(req)

	raw, err := s.generator.Generate(ctx, prompt, SummarySchema)
	if err != nil {
		metrics.SynthesisFailures.Inc()
		if errors.Is(err, genai.ErrGenerationTimeout) {
			return nil, fmt.Errorf("%w: %v", ErrSynthesisTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}

	var summary Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		metrics.SynthesisFailures.Inc()
		return nil, fmt.Errorf("%w: decode error: %v", ErrSynthesisFailed, err)
	}

	s.logger.Info("synthesis completed", map[string]interface{}{
		"target":        req.TargetDisplayName,
		"factCount":     len(summary.Facts),
		"commonCount":   len(summary.CommonThings),
		"messageLength": len(summary.IcebreakerMessage),
	})

	return &summary, nil
}

// buildPrompt assembles the generation prompt. Both profiles are embedded
// as structured JSON so the model extracts concrete facts instead of
// paraphrasing vaguely.
func buildPrompt(req *Request) string {
	requesterJSON, _ := json.MarshalIndent(req.RequesterProfile, "", "  ")
	targetJSON, _ := json.MarshalIndent(req.TargetProfile, "", "  ")

	var parts []string

	parts = append(parts, "Given a target profile and my profile, create:")
	parts = append(parts, fmt.Sprintf("1) A short summary about %s. Use their name; do NOT say \"target person\".", req.TargetDisplayName))
	parts = append(parts, fmt.Sprintf("2) Exactly two interesting facts about %s.", req.TargetDisplayName))
	parts = append(parts, fmt.Sprintf("3) Up to two concrete common things between my profile and %s's profile that I can start a conversation about, in priority order. Cross-reference the structured fields: shared companies, schools, skills, locations, languages.", req.TargetDisplayName))

	parts = append(parts, "\nThen produce:")
	parts = append(parts, "4) icebreaker_message: a single paragraph I can paste into a LinkedIn DM.")
	parts = append(parts, "- Use first person (\"I\").")
	parts = append(parts, fmt.Sprintf("- Greet with \"Hi %s\".", req.TargetFirstName))
	parts = append(parts, fmt.Sprintf("- Mention %s only once, during the greeting.", req.TargetFirstName))
	parts = append(parts, "- Tie in 1-2 of the common things.")
	parts = append(parts, "- Ask one specific question that entices the reader to respond.")
	parts = append(parts, "- Friendly, informal and concise, at most 450 characters.")
	parts = append(parts, "- No em dashes or hyphens.")

	parts = append(parts, fmt.Sprintf("\nMy name: %s", req.RequesterName))
	parts = append(parts, "\nMy profile (JSON):")
	parts = append(parts, string(requesterJSON))
	parts = append(parts, fmt.Sprintf("\n%s's profile (JSON):", req.TargetDisplayName))
	parts = append(parts, string(targetJSON))

	return strings.Join(parts, "\n")
}
