// internal/profile/normalizer.go
package profile

import (
	"sort"
	"strings"
)

const skillsMarker = "Skills:"

// Normalize flattens a raw enrichment payload into a CanonicalProfile.
// It is a total function: any input shape, including nil, yields a
// well-formed profile. Absent containers are treated as empty and type
// mismatches degrade to omission, never to an error.
func Normalize(raw map[string]interface{}) CanonicalProfile {
	// The enrichment API sometimes returns the whole response with the
	// profile nested under "person", sometimes the person object itself.
	p := raw
	if nested, ok := asMap(raw["person"]); ok {
		p = nested
	}
	if p == nil {
		return Empty()
	}

	out := Empty()

	// Education. The structured entries stay 1:1 with the raw history;
	// the flat lists only collect non-empty values.
	schools, _ := asMap(p["schools"])
	for _, item := range asSlice(schools["educationHistory"]) {
		edu, ok := asMap(item)
		if !ok {
			continue
		}

		schoolName := getString(edu, "schoolName")
		degree := getString(edu, "degreeName")
		field := getString(edu, "fieldOfStudy")

		startEnd, _ := asMap(edu["startEndDate"])
		start, _ := asMap(startEnd["start"])
		end, _ := asMap(startEnd["end"])

		out.Education = append(out.Education, EducationEntry{
			SchoolName:   schoolName,
			DegreeName:   degree,
			FieldOfStudy: field,
			StartYear:    getInt(start, "year"),
			StartMonth:   getInt(start, "month"),
			EndYear:      getInt(end, "year"),
			EndMonth:     getInt(end, "month"),
		})

		if schoolName != "" {
			out.SchoolNames = append(out.SchoolNames, schoolName)
		}
		if degree != "" {
			out.Degrees = append(out.Degrees, degree)
		}
		if field != "" {
			out.FieldsOfStudy = append(out.FieldsOfStudy, field)
		}
	}

	// Positions. Descriptions can carry an embedded "Skills: ..." tail
	// delimited by "·" with commas used interchangeably.
	var positionSkills []string
	positions, _ := asMap(p["positions"])
	for _, item := range asSlice(positions["positionHistory"]) {
		pos, ok := asMap(item)
		if !ok {
			continue
		}

		if company := getString(pos, "companyName"); company != "" {
			out.Companies = append(out.Companies, company)
		}
		if title := getString(pos, "title"); title != "" {
			out.Titles = append(out.Titles, title)
		}

		desc := getString(pos, "description")
		if desc == "" {
			continue
		}
		out.Descriptions = append(out.Descriptions, desc)
		positionSkills = append(positionSkills, parseEmbeddedSkills(desc)...)
	}

	// Skills: merge top-level with position-level, trim, dedupe, sort.
	// Sorting keeps the output deterministic across runs.
	seen := make(map[string]bool)
	for _, v := range asSlice(p["skills"]) {
		if s, ok := v.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				seen[s] = true
			}
		}
	}
	for _, s := range positionSkills {
		seen[s] = true
	}
	for s := range seen {
		out.Skills = append(out.Skills, s)
	}
	sort.Strings(out.Skills)

	// Languages: a proficiency-qualified list wins outright over the
	// plain list; the two sources are never merged.
	if lw := asSlice(p["languagesWithProficiency"]); len(lw) > 0 {
		for _, item := range lw {
			entry, ok := asMap(item)
			if !ok {
				continue
			}
			lang := getString(entry, "language")
			prof := getString(entry, "proficiency")
			switch {
			case lang != "" && prof != "":
				out.Languages = append(out.Languages, lang+" ("+prof+")")
			case lang != "":
				out.Languages = append(out.Languages, lang)
			}
		}
	} else {
		for _, v := range asSlice(p["languages"]) {
			if s, ok := v.(string); ok {
				out.Languages = append(out.Languages, s)
			}
		}
	}

	out.PhotoURL = getString(p, "photoUrl")
	out.OpenToWork = getBool(p, "openToWork")
	out.Premium = getBool(p, "premium")
	out.FollowerCount = getInt(p, "followerCount")
	out.Location = getString(p, "location")
	out.PositionsCount = getInt(positions, "positionsCount")

	return out
}

// parseEmbeddedSkills extracts the delimited skill tokens after the first
// "Skills:" marker in a position description. Commas are normalized to the
// primary "·" delimiter before splitting.
func parseEmbeddedSkills(desc string) []string {
	idx := strings.Index(desc, skillsMarker)
	if idx < 0 {
		return nil
	}
	tail := desc[idx+len(skillsMarker):]
	var skills []string
	for _, token := range strings.Split(strings.ReplaceAll(tail, ",", "·"), "·") {
		if token = strings.TrimSpace(token); token != "" {
			skills = append(skills, token)
		}
	}
	return skills
}

// ---- safe accessors: get-or-default at every nesting level ----

func asMap(v interface{}) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	return m, ok
}

func asSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}

func getString(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

func getBool(m map[string]interface{}, key string) bool {
	if m == nil {
		return false
	}
	b, _ := m[key].(bool)
	return b
}

func getInt(m map[string]interface{}, key string) int {
	if m == nil {
		return 0
	}
	switch n := m[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	default:
		return 0
	}
}
