// internal/enrich/fixture.go
package enrich

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed fixtures/requester_profile.json
var requesterFixture []byte

// Fixture returns the embedded canned profile payload. It stands in for a
// live fetch of the requester's own profile, which changes rarely and is
// not worth an enrichment call per request.
func Fixture() (map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(requesterFixture, &raw); err != nil {
		return nil, fmt.Errorf("decode embedded fixture: %w", err)
	}
	return raw, nil
}
