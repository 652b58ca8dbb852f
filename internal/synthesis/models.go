// internal/synthesis/models.go
package synthesis

import "icebreaker-service/internal/profile"

// Summary is the validated structured output of a synthesis call.
type Summary struct {
	Summary           string   `json:"summary"`
	Facts             []string `json:"facts"`
	CommonThings      []string `json:"common_things"`
	IcebreakerMessage string   `json:"icebreaker_message"`
}

// ToMap returns the response-payload form of the summary.
func (s *Summary) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"summary":            s.Summary,
		"facts":              s.Facts,
		"common_things":      s.CommonThings,
		"icebreaker_message": s.IcebreakerMessage,
	}
}

// Request carries everything the synthesizer needs for one generation call.
type Request struct {
	RequesterName     string
	TargetDisplayName string
	TargetFirstName   string
	RequesterProfile  profile.CanonicalProfile
	TargetProfile     profile.CanonicalProfile
}
